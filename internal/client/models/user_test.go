package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUser_UnmarshalKeepsUnknownFields(t *testing.T) {
	in := `{"_id":"u1","name":"A","email":"a@x.com","credits":3,"plan":"free","createdAt":"2024-01-01"}`

	var u User
	require.NoError(t, json.Unmarshal([]byte(in), &u))

	assert.Equal(t, "u1", u.ID)
	assert.Equal(t, "A", u.Name)
	assert.Equal(t, 3, u.Credits)
	require.Contains(t, u.Extra, "plan")
	require.Contains(t, u.Extra, "createdAt")
	assert.NotContains(t, u.Extra, "_id")

	out, err := json.Marshal(u)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"u1","name":"A","email":"a@x.com","credits":3,"plan":"free","createdAt":"2024-01-01"}`, string(out))
}

func TestUser_IDWinsOverMongoID(t *testing.T) {
	var u User
	require.NoError(t, json.Unmarshal([]byte(`{"id":"a","_id":"b","email":"e"}`), &u))
	assert.Equal(t, "a", u.ID)
}

func TestUser_NumericID(t *testing.T) {
	var u User
	require.NoError(t, json.Unmarshal([]byte(`{"id":42,"name":"A","email":"a@x.com","credits":3}`), &u))
	assert.Equal(t, "42", u.ID)
	assert.Equal(t, "a@x.com", u.Email)
	assert.Equal(t, 3, u.Credits)
	assert.Empty(t, u.Extra)

	require.NoError(t, json.Unmarshal([]byte(`{"_id":7,"email":"b@x.com"}`), &u))
	assert.Equal(t, "7", u.ID)
}

func TestUser_UnusableIDIsDropped(t *testing.T) {
	var u User
	require.NoError(t, json.Unmarshal([]byte(`{"_id":{"$oid":"abc"},"email":"a@x.com","credits":1}`), &u))
	assert.Empty(t, u.ID)
	assert.Equal(t, "a@x.com", u.Email)

	require.NoError(t, json.Unmarshal([]byte(`{"id":null,"_id":"m1","email":"a@x.com"}`), &u))
	assert.Equal(t, "m1", u.ID)
}

func TestUser_CloneIsDeep(t *testing.T) {
	u := &User{Name: "A", Extra: map[string]json.RawMessage{"plan": json.RawMessage(`"free"`)}}
	c := u.Clone()

	c.Name = "B"
	c.Extra["plan"][1] = 'X'

	assert.Equal(t, "A", u.Name)
	assert.Equal(t, `"free"`, string(u.Extra["plan"]))
	assert.Nil(t, (*User)(nil).Clone())
}

func TestUser_IsAdmin(t *testing.T) {
	assert.True(t, (&User{Role: RoleAdmin}).IsAdmin())
	assert.False(t, (&User{Role: "user", Email: "jatinagrawal041@gmail.com"}).IsAdmin())
	assert.False(t, (*User)(nil).IsAdmin())
}

func TestQuestion_FlexID(t *testing.T) {
	var qs []Question
	require.NoError(t, json.Unmarshal([]byte(`[{"id":1,"question":"q1"},{"id":"x2","question":"q2"}]`), &qs))

	assert.Equal(t, FlexID("1"), qs[0].ID)
	assert.Equal(t, FlexID("x2"), qs[1].ID)

	out, err := json.Marshal(qs)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"id":1`)
	assert.Contains(t, string(out), `"id":"x2"`)
}
