// Package models defines the client-side data models: the authenticated user,
// generated quizzes and the local generation history.
package models

import (
	"encoding/json"
	"maps"
)

// RoleAdmin is the server-asserted role that unlocks the admin view.
const RoleAdmin = "admin"

// User is the authenticated principal as returned by the backend.
//
// Attributes the client does not model are kept in Extra and written back
// unchanged when the record is serialized, so a persisted snapshot never
// loses fields the backend sent.
type User struct {
	ID         string `json:"id,omitempty"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Credits    int    `json:"credits"`
	IsVerified bool   `json:"isVerified,omitempty"`
	Role       string `json:"role,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

type userAlias User

var knownUserFields = []string{"id", "_id", "name", "email", "credits", "isVerified", "role"}

// UnmarshalJSON accepts the id as a string or a number, under "id" or the
// "_id" some deployments send. An id of any other shape is dropped rather
// than failing the whole record.
func (u *User) UnmarshalJSON(b []byte) error {
	var a userAlias
	wire := struct {
		*userAlias
		ID      json.RawMessage `json:"id"`
		MongoID json.RawMessage `json:"_id"`
	}{userAlias: &a}
	if err := json.Unmarshal(b, &wire); err != nil {
		return err
	}

	a.ID = lenientID(wire.ID)
	if a.ID == "" {
		a.ID = lenientID(wire.MongoID)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	for _, k := range knownUserFields {
		delete(raw, k)
	}
	if len(raw) > 0 {
		a.Extra = raw
	}

	*u = User(a)
	return nil
}

func lenientID(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var id FlexID
	if err := json.Unmarshal(raw, &id); err != nil {
		return ""
	}
	return string(id)
}

func (u User) MarshalJSON() ([]byte, error) {
	known, err := json.Marshal(userAlias(u))
	if err != nil {
		return nil, err
	}
	if len(u.Extra) == 0 {
		return known, nil
	}

	out := make(map[string]json.RawMessage, len(u.Extra)+6)
	maps.Copy(out, u.Extra)

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(known, &fields); err != nil {
		return nil, err
	}
	maps.Copy(out, fields)

	return json.Marshal(out)
}

// Clone returns a deep copy of u.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	if u.Extra != nil {
		c.Extra = make(map[string]json.RawMessage, len(u.Extra))
		for k, v := range u.Extra {
			c.Extra[k] = append(json.RawMessage(nil), v...)
		}
	}
	return &c
}

// IsAdmin reports whether the backend granted the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// ProfilePatch is a partial profile update. Nil fields are not sent.
type ProfilePatch struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
}
