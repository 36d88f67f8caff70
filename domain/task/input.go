package task

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Input carries the user-supplied fields of a create or full update.
// Empty strings fall back to defaults; DueDate may be nil, empty or a date.
type Input struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	DueDate     *string `json:"due_date"`
	Priority    string  `json:"priority"`
	Status      string  `json:"status"`
}

type fields struct {
	Title       string `validate:"required,max=255"`
	Description string
	Priority    string `validate:"oneof=low medium high"`
	Status      string `validate:"oneof=pending completed"`
}

// PrepareCreate validates in for a new task. Any supplied status is
// ignored: new tasks always start pending.
func PrepareCreate(in Input) (*Task, error) {
	in.Status = string(StatusPending)
	return prepare(in)
}

// PrepareUpdate validates in as a full replacement of task id's mutable fields.
func PrepareUpdate(id int64, in Input) (*Task, error) {
	t, err := prepare(in)
	if err != nil {
		return nil, err
	}
	t.ID = id
	return t, nil
}

func prepare(in Input) (*Task, error) {
	f := fields{
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Priority:    defaultString(strings.TrimSpace(in.Priority), string(PriorityMedium)),
		Status:      defaultString(strings.TrimSpace(in.Status), string(StatusPending)),
	}
	if err := validate.Struct(f); err != nil {
		return nil, translate(err)
	}

	var due *Date
	if in.DueDate != nil && strings.TrimSpace(*in.DueDate) != "" {
		d, err := ParseDate(*in.DueDate)
		if err != nil {
			return nil, &ValidationError{Field: "due_date", Message: MsgInvalidDueDate}
		}
		due = &d
	}

	return &Task{
		Title:       f.Title,
		Description: f.Description,
		DueDate:     due,
		Priority:    Priority(f.Priority),
		Status:      Status(f.Status),
	}, nil
}

// ParseStatus validates a status change request.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", &ValidationError{Field: "status", Message: MsgInvalidStatus}
	}
	return st, nil
}

func translate(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &ValidationError{Message: err.Error()}
	}

	fe := verrs[0]
	switch fe.StructField() {
	case "Title":
		if fe.Tag() == "max" {
			return &ValidationError{Field: "title", Message: MsgTitleTooLong}
		}
		return &ValidationError{Field: "title", Message: MsgTitleRequired}
	case "Priority":
		return &ValidationError{Field: "priority", Message: MsgInvalidPriority}
	case "Status":
		return &ValidationError{Field: "status", Message: MsgInvalidStatus}
	}
	return &ValidationError{Field: strings.ToLower(fe.Field()), Message: fe.Error()}
}

func defaultString(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
