package service

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/maxviazov/bongo-stats-service/internal/media"
	"github.com/maxviazov/bongo-stats-service/internal/model"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// fieldErrorsOf converts validator output into FieldErrors keyed by JSON name.
func fieldErrorsOf(v any, jsonNames map[string]string) []FieldError {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldError{{Field: "body", Message: err.Error()}}
	}
	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		name := fe.Field()
		if j, ok := jsonNames[fe.StructNamespace()]; ok {
			name = j
		} else if j, ok := jsonNames[name]; ok {
			name = j
		} else {
			name = strings.ToLower(name)
		}
		out = append(out, FieldError{Field: name, Message: messageFor(fe)})
	}
	return out
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "must not be empty"
	case "min":
		return "must be >= " + fe.Param()
	case "max":
		if fe.Kind().String() == "string" {
			return "length must be <= " + fe.Param()
		}
		return "must be <= " + fe.Param()
	case "oneof":
		return "must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "datetime":
		return "must match " + fe.Param()
	default:
		return "is invalid"
	}
}

var playerFields = map[string]string{
	"Name":          "name",
	"Birthday":      "birthday",
	"Bongs":         "bongs",
	"PreferredFoot": "preferred_foot",
	"Pace":          "fifa_stats.pace",
	"Shooting":      "fifa_stats.shooting",
	"Dribbling":     "fifa_stats.dribbling",
	"Physical":      "fifa_stats.physical",
	"Defense":       "fifa_stats.defense",
	"Passing":       "fifa_stats.passing",
}

var matchFields = map[string]string{
	"Opponent":      "opponent",
	"Date":          "date",
	"Time":          "time",
	"FieldName":     "field_name",
	"OpponentScore": "opponent_score",
	"NetMatchTime":  "net_match_time",
}

// imageError validates an optional data-URL image field inline.
func imageError(field string, img *string) []FieldError {
	if err := media.Validate(img); err != nil {
		return []FieldError{{Field: field, Message: err.Error()}}
	}
	return nil
}

// playerFromInput validates in and builds the player it describes.
func playerFromInput(in PlayerInput) (model.Player, error) {
	in.Name = strings.TrimSpace(in.Name)
	ferrs := fieldErrorsOf(in, playerFields)

	fifa := model.DefaultFIFAStats()
	if in.FIFA != nil {
		fifa = *in.FIFA
	}
	ferrs = append(ferrs, imageError("profile_image", in.ProfileImage)...)
	if err := NewInvalidInputError(ferrs...); err != nil {
		return model.Player{}, err
	}

	p := model.Player{
		Name:          in.Name,
		Bongs:         in.Bongs,
		PreferredFoot: model.FootRight,
		FIFA:          fifa,
		ProfileImage:  emptyToNil(in.ProfileImage),
	}
	if in.PreferredFoot != "" {
		p.PreferredFoot = model.Foot(in.PreferredFoot)
	}
	if in.Birthday != nil && *in.Birthday != "" {
		d, _ := time.Parse("2006-01-02", *in.Birthday)
		p.Birthday = &d
	}
	return p, nil
}

// scheduleOf resolves the kickoff time of in. A bare date gets the default
// kickoff, in loc.
func scheduleOf(in MatchInput, defaultKickoff string, loc *time.Location) (time.Time, []FieldError) {
	if in.ScheduledAt != nil {
		return in.ScheduledAt.UTC(), nil
	}
	if in.Date == "" {
		return time.Time{}, []FieldError{{Field: "date", Message: "date or scheduled_at is required"}}
	}
	hhmm := in.Time
	if hhmm == "" {
		hhmm = defaultKickoff
	}
	t, err := time.ParseInLocation("2006-01-02 15:04", in.Date+" "+hhmm, loc)
	if err != nil {
		return time.Time{}, []FieldError{{Field: "time", Message: "must match 15:04"}}
	}
	return t.UTC(), nil
}

func emptyToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	v := *s
	return &v
}
