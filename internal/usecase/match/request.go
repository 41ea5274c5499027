package match

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/gdugdh24/bookswap-backend/internal/domain"
	"github.com/go-playground/validator/v10"
)

var objectIDPattern = regexp.MustCompile(`^[0-9a-fA-F]{24}$`)

// GenerateRequest is the specification of one generation run.
type GenerateRequest struct {
	SenderBranches                      []string                 `json:"senderBranches" validate:"required,min=1,dive,objectid"`
	ReceiverBranches                    []string                 `json:"receiverBranches" validate:"required,min=1,dive,objectid"`
	StandLocation                       string                   `json:"standLocation" validate:"required"`
	UserMatchLocations                  []domain.MeetingLocation `json:"userMatchLocations" validate:"required,dive"`
	StartTime                           time.Time                `json:"startTime" validate:"required"`
	DeadlineBefore                      time.Time                `json:"deadlineBefore" validate:"required,future"`
	MatchMeetingDurationInMS            int64                    `json:"matchMeetingDurationInMS" validate:"required,min=1"`
	IncludeSenderItemsFromOtherBranches bool                     `json:"includeSenderItemsFromOtherBranches"`
	AdditionalReceiverItems             map[string][]string      `json:"additionalReceiverItems,omitempty" validate:"omitempty,dive,keys,objectid,endkeys,dive,objectid"`
	DeadlineOverrides                   map[string]time.Time     `json:"deadlineOverrides,omitempty" validate:"omitempty,dive,keys,objectid,endkeys,required"`
}

func (r *GenerateRequest) MeetingDuration() time.Duration {
	return time.Duration(r.MatchMeetingDurationInMS) * time.Millisecond
}

// GenerateResult summarizes a persisted generation run.
type GenerateResult struct {
	UserMatches  int             `json:"userMatches"`
	StandMatches int             `json:"standMatches"`
	Matches      []*domain.Match `json:"matches"`
}

// newValidator builds the request validator; "future" compares against now().
func newValidator(now func() time.Time) *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("objectid", func(fl validator.FieldLevel) bool {
		return objectIDPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("future", func(fl validator.FieldLevel) bool {
		t, ok := fl.Field().Interface().(time.Time)
		return ok && t.After(now())
	})
	return v
}

func validationError(err error) error {
	errs, ok := err.(validator.ValidationErrors)
	if !ok || len(errs) == 0 {
		return domain.NewValidationError(domain.CodeInvalidSpec, fmt.Sprintf("invalid specification: %v", err))
	}

	msgs := make([]string, 0, len(errs))
	for _, fe := range errs {
		msgs = append(msgs, fmt.Sprintf("%s failed on '%s'", fe.Namespace(), fe.Tag()))
	}
	return domain.NewValidationError(domain.CodeInvalidSpec, "invalid specification: "+strings.Join(msgs, "; "))
}
