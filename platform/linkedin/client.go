package linkedin

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Abhishek-kmr525/admin.freereminders.net-sub000/platform"
	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

const (
	DefaultBaseURL = "https://api.linkedin.com"
	PlatformName   = "linkedin"
)

type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client publishes text posts through the UGC API. It never retries a
// publish call: a timeout may still have created the post.
type Client struct {
	r *resty.Client
}

func New(cfg Config) *Client {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	r := resty.New().
		SetBaseURL(base).
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("Accept", "application/json")

	return &Client{r: r}
}

func (c *Client) Name() string {
	return PlatformName
}

type userInfo struct {
	Sub  string `json:"sub"`
	Name string `json:"name"`
}

// Identity resolves the member id behind an access token.
func (c *Client) Identity(ctx context.Context, accessToken string) (string, error) {
	var info userInfo
	resp, err := c.r.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		SetResult(&info).
		SetError(&apiError{}).
		Get("/v2/userinfo")
	if err != nil {
		return "", transportError(err)
	}
	if resp.IsError() {
		return "", classify(resp)
	}
	if info.Sub == "" {
		return "", &platform.Error{Kind: platform.KindPlatformRejected, StatusCode: resp.StatusCode(), Message: "userinfo response has no sub"}
	}
	return info.Sub, nil
}

type ugcPost struct {
	Author          string         `json:"author"`
	LifecycleState  string         `json:"lifecycleState"`
	SpecificContent map[string]any `json:"specificContent"`
	Visibility      map[string]any `json:"visibility"`
}

type ugcResponse struct {
	ID string `json:"id"`
}

func (c *Client) Publish(ctx context.Context, account platform.Account, content string) (string, error) {
	memberID := account.UserID
	if memberID == "" {
		id, err := c.Identity(ctx, account.AccessToken)
		if err != nil {
			return "", err
		}
		memberID = id
	}

	body := ugcPost{
		Author:         "urn:li:person:" + memberID,
		LifecycleState: "PUBLISHED",
		SpecificContent: map[string]any{
			"com.linkedin.ugc.ShareContent": map[string]any{
				"shareCommentary":    map[string]string{"text": content},
				"shareMediaCategory": "NONE",
			},
		},
		Visibility: map[string]any{
			"com.linkedin.ugc.MemberNetworkVisibility": "PUBLIC",
		},
	}

	var result ugcResponse
	resp, err := c.r.R().
		SetContext(ctx).
		SetAuthToken(account.AccessToken).
		SetHeader("Content-Type", "application/json").
		SetHeader("X-Restli-Protocol-Version", "2.0.0").
		SetBody(body).
		SetResult(&result).
		SetError(&apiError{}).
		Post("/v2/ugcPosts")
	if err != nil {
		return "", transportError(err)
	}
	if resp.IsError() {
		return "", classify(resp)
	}

	postID := result.ID
	if postID == "" {
		postID = resp.Header().Get("X-RestLi-Id")
	}
	if postID == "" {
		return "", &platform.Error{Kind: platform.KindPlatformRejected, StatusCode: resp.StatusCode(), Message: "response carries no post id"}
	}

	logrus.WithField("post_id", postID).Debug("[LINKEDIN] post created")
	return postID, nil
}

// maxErrorLen bounds the platform message kept on a failed post, in bytes.
const maxErrorLen = 300

// truncate cuts s to at most max bytes without splitting a UTF-8 sequence.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

type apiError struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
}

func classify(resp *resty.Response) error {
	code := resp.StatusCode()
	msg := strings.TrimSpace(resp.String())
	if e, ok := resp.Error().(*apiError); ok && e != nil && e.Message != "" {
		msg = e.Message
	}
	msg = truncate(msg, maxErrorLen)

	kind := platform.KindPlatformRejected
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		kind = platform.KindAuth
	case code == http.StatusTooManyRequests:
		kind = platform.KindRateLimited
	case code >= 500:
		kind = platform.KindTransientNetwork
	}
	return &platform.Error{Kind: kind, StatusCode: code, Message: msg}
}

func transportError(err error) error {
	msg := err.Error()
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		msg = "timeout: " + msg
	} else if errors.Is(err, context.DeadlineExceeded) {
		msg = "timeout: " + msg
	}
	return &platform.Error{Kind: platform.KindTransientNetwork, Message: msg, Err: err}
}
