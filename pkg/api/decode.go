package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/volchd/projects-api/internal/domain"
	"github.com/volchd/projects-api/pkg/validation"
)

// Bodies are decoded field by field from the raw JSON object rather than in
// one json.Unmarshal pass. That costs a little code but buys two things the
// API promises: a type error on one field does not hide problems on the
// others, and updates can tell an absent key from an explicit null.

// MsgDueBeforeStart is the violation reported when a task's due date
// precedes its start date.
const MsgDueBeforeStart = "dueDate must not be before startDate"

// OptionalString distinguishes a key that was absent (Set false), set to
// null (Set true, Valid false), and set to a string value.
type OptionalString struct {
	Set   bool
	Valid bool
	Value string
}

// Ptr returns the value as a plain pointer, nil when absent or null.
func (o OptionalString) Ptr() *string {
	if !o.Set || !o.Valid {
		return nil
	}
	v := o.Value
	return &v
}

// OptionalTime is OptionalString's shape for date-time fields.
type OptionalTime struct {
	Set   bool
	Valid bool
	Value time.Time
}

// Ptr returns the value as a plain pointer, nil when absent or null.
func (o OptionalTime) Ptr() *time.Time {
	if !o.Set || !o.Valid {
		return nil
	}
	v := o.Value
	return &v
}

// shapeErrors accumulates per-field decode problems in field order and
// remembers which fields they hit, so rule messages for those fields can be
// suppressed instead of doubling up.
type shapeErrors struct {
	messages []string
	fields   map[string]bool
}

func newShapeErrors() *shapeErrors {
	return &shapeErrors{fields: make(map[string]bool)}
}

func (s *shapeErrors) add(field, message string) {
	s.messages = append(s.messages, message)
	s.fields[field] = true
}

// covers reports whether the rule message targets a field that already has
// a shape error. Rule messages start with the field name, possibly indexed
// ("labels[2] ...").
func (s *shapeErrors) covers(message string) bool {
	field := message
	if i := strings.IndexByte(field, ' '); i >= 0 {
		field = field[:i]
	}
	if i := strings.IndexByte(field, '['); i >= 0 {
		field = field[:i]
	}
	return s.fields[field]
}

func (s *shapeErrors) mergeRules(rules []string) []string {
	out := s.messages
	for _, msg := range rules {
		if s.covers(msg) {
			continue
		}
		out = append(out, msg)
	}
	return out
}

// bodyFields reads the request body as a JSON object. Anything else (bad
// JSON, a bare array, null, an empty body) is one violation.
func bodyFields(r io.Reader) (map[string]json.RawMessage, []string) {
	var fields map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&fields); err != nil || fields == nil {
		return nil, []string{"request body must be a JSON object"}
	}
	return fields, nil
}

func isNull(raw json.RawMessage) bool {
	return string(bytes.TrimSpace(raw)) == "null"
}

// decodeString reads a required-to-be-string field. Explicit null is a
// violation; absent is fine and yields nil.
func decodeString(fields map[string]json.RawMessage, key string, shape *shapeErrors) *string {
	raw, ok := fields[key]
	if !ok {
		return nil
	}
	if isNull(raw) {
		shape.add(key, key+" must not be null")
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		shape.add(key, key+" must be a string")
		return nil
	}
	return &s
}

// decodeNullableString reads a string-or-null field.
func decodeNullableString(fields map[string]json.RawMessage, key string, shape *shapeErrors) OptionalString {
	raw, ok := fields[key]
	if !ok {
		return OptionalString{}
	}
	if isNull(raw) {
		return OptionalString{Set: true}
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		shape.add(key, key+" must be a string or null")
		return OptionalString{}
	}
	return OptionalString{Set: true, Valid: true, Value: s}
}

// decodeStringList reads a list-of-strings field. Null is not an accepted
// way to express "no change" or "empty", so it is a violation.
func decodeStringList(fields map[string]json.RawMessage, key string, shape *shapeErrors) *[]string {
	raw, ok := fields[key]
	if !ok {
		return nil
	}
	var list []string
	if isNull(raw) || json.Unmarshal(raw, &list) != nil {
		shape.add(key, key+" must be a list of strings")
		return nil
	}
	if list == nil {
		list = []string{}
	}
	return &list
}

// decodeNullableTime reads an RFC 3339 date-time-or-null field.
func decodeNullableTime(fields map[string]json.RawMessage, key string, shape *shapeErrors) OptionalTime {
	raw, ok := fields[key]
	if !ok {
		return OptionalTime{}
	}
	if isNull(raw) {
		return OptionalTime{Set: true}
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		shape.add(key, key+" must be an ISO-8601 date-time or null")
		return OptionalTime{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		shape.add(key, key+" must be a valid ISO-8601 date-time")
		return OptionalTime{}
	}
	return OptionalTime{Set: true, Valid: true, Value: t}
}

// validateListValues applies the element rules shared by statuses and
// labels, with the same wording the tag-based path produces.
func validateListValues(field string, values []string) []string {
	var out []string
	for i, v := range values {
		switch {
		case v == "":
			out = append(out, fmt.Sprintf("%s[%d] must not be empty", field, i))
		case utf8.RuneCountInString(v) > domain.MaxListValueLength:
			out = append(out, fmt.Sprintf("%s[%d] must be at most %d characters", field, i, domain.MaxListValueLength))
		}
	}
	return out
}

// DecodeCreateProject decodes and validates a POST /projects body. The
// returned violations, when non-empty, are the complete 400 payload.
func DecodeCreateProject(r io.Reader) (CreateProjectRequest, []string) {
	var req CreateProjectRequest
	fields, errs := bodyFields(r)
	if errs != nil {
		return req, errs
	}

	shape := newShapeErrors()
	if name := decodeString(fields, "name", shape); name != nil {
		req.Name = *name
	}
	req.Description = decodeNullableString(fields, "description", shape).Ptr()
	if statuses := decodeStringList(fields, "statuses", shape); statuses != nil {
		req.Statuses = *statuses
	}
	if labels := decodeStringList(fields, "labels", shape); labels != nil {
		req.Labels = *labels
	}

	return req, shape.mergeRules(validation.ValidateStruct(req))
}

// DecodeCreateTask decodes and validates a POST tasks body. Dates are
// parsed here; their relative order is also checked since both final values
// are at hand.
func DecodeCreateTask(r io.Reader) (CreateTaskRequest, []string) {
	var req CreateTaskRequest
	fields, errs := bodyFields(r)
	if errs != nil {
		return req, errs
	}

	shape := newShapeErrors()
	if name := decodeString(fields, "name", shape); name != nil {
		req.Name = *name
	}
	req.Description = decodeNullableString(fields, "description", shape).Ptr()
	if status := decodeNullableString(fields, "status", shape).Ptr(); status != nil {
		req.Status = *status
	}
	if priority := decodeNullableString(fields, "priority", shape).Ptr(); priority != nil {
		req.Priority = *priority
	}
	req.StartDate = decodeNullableTime(fields, "startDate", shape).Ptr()
	req.DueDate = decodeNullableTime(fields, "dueDate", shape).Ptr()
	if labels := decodeStringList(fields, "labels", shape); labels != nil {
		req.Labels = *labels
	}

	violations := shape.mergeRules(validation.ValidateStruct(req))
	if !domain.DatesOrdered(req.StartDate, req.DueDate) {
		violations = append(violations, MsgDueBeforeStart)
	}
	return req, violations
}

// DecodeUpdateProject decodes a PUT /projects body into a patch, keeping
// track of which keys were actually present.
func DecodeUpdateProject(r io.Reader) (UpdateProjectPatch, []string) {
	var patch UpdateProjectPatch
	fields, errs := bodyFields(r)
	if errs != nil {
		return patch, errs
	}

	shape := newShapeErrors()
	patch.Name = decodeString(fields, "name", shape)
	patch.Description = decodeNullableString(fields, "description", shape)
	patch.Statuses = decodeStringList(fields, "statuses", shape)
	patch.Labels = decodeStringList(fields, "labels", shape)

	violations := shape.messages
	if patch.Name != nil && *patch.Name == "" {
		violations = append(violations, "name must not be empty")
	}
	if patch.Statuses != nil {
		violations = append(violations, validateListValues("statuses", *patch.Statuses)...)
	}
	if patch.Labels != nil {
		violations = append(violations, validateListValues("labels", *patch.Labels)...)
	}
	return patch, violations
}

// DecodeUpdateTask decodes a PUT tasks body into a patch. Status membership
// and date ordering against the stored task are the service's checks; only
// self-contained rules run here.
func DecodeUpdateTask(r io.Reader) (UpdateTaskPatch, []string) {
	var patch UpdateTaskPatch
	fields, errs := bodyFields(r)
	if errs != nil {
		return patch, errs
	}

	shape := newShapeErrors()
	patch.Name = decodeString(fields, "name", shape)
	patch.Description = decodeNullableString(fields, "description", shape)
	patch.Status = decodeString(fields, "status", shape)
	patch.Priority = decodeString(fields, "priority", shape)
	patch.StartDate = decodeNullableTime(fields, "startDate", shape)
	patch.DueDate = decodeNullableTime(fields, "dueDate", shape)
	patch.Labels = decodeStringList(fields, "labels", shape)

	violations := shape.messages
	if patch.Name != nil && *patch.Name == "" {
		violations = append(violations, "name must not be empty")
	}
	if patch.Priority != nil {
		if _, ok := domain.ParsePriority(*patch.Priority); !ok {
			violations = append(violations, "priority must be one of: "+strings.Join(domain.PriorityValues(), ", "))
		}
	}
	if patch.Labels != nil {
		violations = append(violations, validateListValues("labels", *patch.Labels)...)
	}
	return patch, violations
}
