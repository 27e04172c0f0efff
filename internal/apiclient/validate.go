package apiclient

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/me/uniportal/pkg/model"
)

const dateLayout = "2006-01-02"

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ymdTag validates a string field as a YYYY-MM-DD calendar date.
const ymdTag = "ymd"

var (
	validate   *validator.Validate
	translator ut.Translator
)

func init() {
	validate = validator.New()

	english := en.New()
	uni := ut.New(english, english)
	translator, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Report JSON names, which are what the user typed on the wire.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation(ymdTag, func(fl validator.FieldLevel) bool {
		s, ok := fl.Field().Interface().(string)
		return ok && IsValidDate(s)
	})
	_ = validate.RegisterTranslation(ymdTag, translator,
		func(ut.Translator) error { return nil },
		func(_ ut.Translator, fe validator.FieldError) string {
			return fe.Field() + " must be a valid date in YYYY-MM-DD format"
		})
}

// IsValidDate reports whether s is a real calendar date written as
// YYYY-MM-DD. Shape alone is not enough: 2024-02-30 is rejected because it
// does not survive a parse and reformat round trip.
func IsValidDate(s string) bool {
	if !datePattern.MatchString(s) {
		return false
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return false
	}
	return t.Format(dateLayout) == s
}

// ValidateDate returns a *ValidationError for field when s is not a valid date.
func ValidateDate(field, s string) error {
	if !IsValidDate(s) {
		return &ValidationError{Field: field, Message: "must be a valid date in YYYY-MM-DD format"}
	}
	return nil
}

// validateRange checks both dates of a range and that start is not after
// end. Empty dates are skipped unless required.
func validateRange(startField, start, endField, end string, required bool) error {
	for _, d := range []struct{ field, value string }{{startField, start}, {endField, end}} {
		if d.value == "" {
			if required {
				return &ValidationError{Field: d.field, Message: "is required"}
			}
			continue
		}
		if err := ValidateDate(d.field, d.value); err != nil {
			return err
		}
	}
	// Valid YYYY-MM-DD strings order lexically.
	if start != "" && end != "" && start > end {
		return &ValidationError{Field: endField, Message: fmt.Sprintf("must not be before %s", startField)}
	}
	return nil
}

// ValidateReportFilter checks the date bounds of a report filter.
func ValidateReportFilter(f model.ReportFilter) error {
	if f.Semester < 0 {
		return &ValidationError{Field: "semester", Message: "must not be negative"}
	}
	return validateRange("start_date", f.StartDate, "end_date", f.EndDate, false)
}

// ValidateTrendMetric rejects metrics the trends report does not support.
func ValidateTrendMetric(m model.TrendMetric) error {
	switch m {
	case model.MetricAttendance, model.MetricPerformance, model.MetricPayments:
		return nil
	}
	return &ValidationError{Field: "metric", Message: fmt.Sprintf("invalid metric %q (want attendance, performance or payments)", m)}
}

// ValidateTrendPeriod rejects periods the trends report does not support.
func ValidateTrendPeriod(p model.TrendPeriod) error {
	switch p {
	case model.PeriodMonthly, model.PeriodSemester:
		return nil
	}
	return &ValidationError{Field: "period", Message: fmt.Sprintf("invalid period %q (want monthly or semester)", p)}
}

// validateStruct runs the struct tags of v and converts the first failure
// into a *ValidationError with an English message.
func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return &ValidationError{Field: fe.Field(), Message: fe.Translate(translator)}
	}
	return &ValidationError{Message: err.Error()}
}
