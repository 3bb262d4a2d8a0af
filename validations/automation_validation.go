package validations

import (
	"context"
	"errors"

	"github.com/Abhishek-kmr525/admin.freereminders.net-sub000/automation/domain"
	"github.com/Abhishek-kmr525/admin.freereminders.net-sub000/automation/schedule"
	"github.com/Abhishek-kmr525/admin.freereminders.net-sub000/contentgen"
	pkgError "github.com/Abhishek-kmr525/admin.freereminders.net-sub000/pkg/error"
	"github.com/Abhishek-kmr525/admin.freereminders.net-sub000/pkg/timeutils"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// MaxPostLength is LinkedIn's commentary limit.
const MaxPostLength = 3000

func ValidateCreateAutomation(ctx context.Context, request domain.CreateAutomationRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.Name, validation.Required, validation.Length(1, 120)),
		validation.Field(&request.Topic, validation.Required, validation.Length(3, 500)),
		validation.Field(&request.Provider, validation.Required, validation.By(func(v any) error {
			_, err := contentgen.ParseProvider(v.(string))
			return err
		})),
		validation.Field(&request.Style, validation.Length(0, 200)),
		validation.Field(&request.Instructions, validation.Length(0, 2000)),
		validation.Field(&request.TimeOfDay, validation.Required, validation.By(func(v any) error {
			_, err := timeutils.ParseClock(v.(string))
			return err
		})),
		validation.Field(&request.StartDate, validation.Required, validation.Date(timeutils.DateLayout)),
		validation.Field(&request.EndDate, validation.Required, validation.Date(timeutils.DateLayout), validation.By(endNotBeforeStart(request.StartDate))),
		validation.Field(&request.Frequency, validation.Required, validation.By(func(v any) error {
			_, err := schedule.ParseFrequency(v.(string))
			return err
		})),
		validation.Field(&request.Days,
			validation.When(request.Frequency == string(schedule.CustomDays), validation.Required.Error("at least one day is required for custom-days")),
			validation.By(func(v any) error {
				_, err := timeutils.ParseWeekdays(v.([]string))
				return err
			}),
		),
		validation.Field(&request.Timezone, validation.By(func(v any) error {
			_, err := timeutils.LoadLocation(v.(string))
			return err
		})),
		validation.Field(&request.Hashtags, validation.Length(0, 10)),
	)

	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	return nil
}

func endNotBeforeStart(start string) validation.RuleFunc {
	return func(v any) error {
		s, err := timeutils.ParseDate(start)
		if err != nil {
			return nil // reported on start_date
		}
		e, err := timeutils.ParseDate(v.(string))
		if err != nil {
			return nil
		}
		if e.Before(s) {
			return errors.New("must not be before start_date")
		}
		return nil
	}
}

func ValidateUpdatePost(ctx context.Context, request domain.UpdatePostRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.Content, validation.Required, validation.RuneLength(1, MaxPostLength)),
	)

	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	return nil
}

func ValidateStoreCredential(ctx context.Context, request domain.StoreCredentialRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.AccessToken, validation.Required),
		validation.Field(&request.ExpiresAt, validation.Required),
	)

	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	return nil
}
