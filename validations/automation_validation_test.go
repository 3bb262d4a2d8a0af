package validations

import (
	"context"
	"testing"

	"github.com/Abhishek-kmr525/admin.freereminders.net-sub000/automation/domain"
	pkgError "github.com/Abhishek-kmr525/admin.freereminders.net-sub000/pkg/error"
	"github.com/stretchr/testify/assert"
)

func validRequest() domain.CreateAutomationRequest {
	return domain.CreateAutomationRequest{
		Name:      "Monday tips",
		Topic:     "Productivity for engineers",
		Provider:  "gemini",
		TimeOfDay: "09:00",
		StartDate: "2024-01-01",
		EndDate:   "2024-01-10",
		Frequency: "weekdays",
	}
}

func TestValidateCreateAutomation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *domain.CreateAutomationRequest)
		wantErr bool
	}{
		{name: "valid", mutate: func(r *domain.CreateAutomationRequest) {}},
		{name: "same start and end", mutate: func(r *domain.CreateAutomationRequest) { r.EndDate = r.StartDate }},
		{name: "end before start", mutate: func(r *domain.CreateAutomationRequest) { r.EndDate = "2023-12-31" }, wantErr: true},
		{name: "bad time", mutate: func(r *domain.CreateAutomationRequest) { r.TimeOfDay = "25:00" }, wantErr: true},
		{name: "unknown provider", mutate: func(r *domain.CreateAutomationRequest) { r.Provider = "claude" }, wantErr: true},
		{name: "unknown frequency", mutate: func(r *domain.CreateAutomationRequest) { r.Frequency = "hourly" }, wantErr: true},
		{name: "custom-days without days", mutate: func(r *domain.CreateAutomationRequest) { r.Frequency = "custom-days" }, wantErr: true},
		{name: "custom-days with days", mutate: func(r *domain.CreateAutomationRequest) {
			r.Frequency = "custom-days"
			r.Days = []string{"mon", "thu"}
		}},
		{name: "bad day", mutate: func(r *domain.CreateAutomationRequest) {
			r.Frequency = "custom-days"
			r.Days = []string{"someday"}
		}, wantErr: true},
		{name: "bad timezone", mutate: func(r *domain.CreateAutomationRequest) { r.Timezone = "Nowhere/Land" }, wantErr: true},
		{name: "missing topic", mutate: func(r *domain.CreateAutomationRequest) { r.Topic = "" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(&req)
			err := ValidateCreateAutomation(context.Background(), req)
			if tt.wantErr {
				assert.Error(t, err)
				assert.IsType(t, pkgError.ValidationError(""), err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateUpdatePost(t *testing.T) {
	assert.NoError(t, ValidateUpdatePost(context.Background(), domain.UpdatePostRequest{Content: "hello"}))
	assert.Error(t, ValidateUpdatePost(context.Background(), domain.UpdatePostRequest{Content: ""}))
}
