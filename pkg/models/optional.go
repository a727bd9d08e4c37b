package models

import "encoding/json"

// OptionalString distinguishes an absent JSON field from an explicit null.
// Set is true whenever the key appeared in the document; Value is nil when
// the value was null.
type OptionalString struct {
	Set   bool
	Value *string
}

// Some returns a present, non-null OptionalString.
func Some(s string) OptionalString {
	return OptionalString{Set: true, Value: &s}
}

// Null returns a present OptionalString holding null.
func Null() OptionalString {
	return OptionalString{Set: true}
}

func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}

func (o OptionalString) MarshalJSON() ([]byte, error) {
	if !o.Set || o.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*o.Value)
}
