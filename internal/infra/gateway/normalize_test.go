package gateway

import (
	"encoding/json"
	"testing"

	"libris/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeProfileShapes(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want entity.Profile
	}{
		{
			name: "bare canonical",
			raw:  `{"id":"7","name":"Jane Doe","email":"jane@x.io","phone":"123","avatar":"a.png","is_admin":true}`,
			want: entity.Profile{ID: "7", Name: "Jane Doe", Email: "jane@x.io", Phone: "123", Avatar: "a.png", Admin: true},
		},
		{
			name: "nested data.user with renamed fields",
			raw:  `{"success":true,"data":{"user":{"user_id":"7","full_name":"jane doe","email":"jane@x.io","phone_number":"123","avatar_url":"a.png","role":"admin"}}}`,
			want: entity.Profile{ID: "7", Name: "Jane Doe", Email: "jane@x.io", Phone: "123", Avatar: "a.png", Admin: true},
		},
		{
			name: "nested data.profile",
			raw:  `{"data":{"profile":{"uid":"9","username":"sam","email":"sam@x.io"}}}`,
			want: entity.Profile{ID: "9", Name: "Sam", Email: "sam@x.io"},
		},
		{
			name: "top-level user wrapper",
			raw:  `{"user":{"id":"3","name":"ana","email":"ana@x.io","photo":"p.png"}}`,
			want: entity.Profile{ID: "3", Name: "Ana", Email: "ana@x.io", Avatar: "p.png"},
		},
		{
			name: "numeric id coerced to string",
			raw:  `{"data":{"id":42,"name":"bo","email":"bo@x.io"}}`,
			want: entity.Profile{ID: "42", Name: "Bo", Email: "bo@x.io"},
		},
		{
			name: "admin from boolean flag",
			raw:  `{"id":"5","name":"root","email":"r@x.io","isAdmin":true}`,
			want: entity.Profile{ID: "5", Name: "Root", Email: "r@x.io", Admin: true},
		},
		{
			name: "superadmin role",
			raw:  `{"id":"6","name":"max","email":"m@x.io","role":"superadmin"}`,
			want: entity.Profile{ID: "6", Name: "Max", Email: "m@x.io", Admin: true},
		},
		{
			name: "member role is not admin",
			raw:  `{"id":"8","name":"kim","email":"k@x.io","role":"member"}`,
			want: entity.Profile{ID: "8", Name: "Kim", Email: "k@x.io"},
		},
		{
			name: "not a profile at all",
			raw:  `{"books":[{"id":1}]}`,
			want: entity.Profile{},
		},
		{
			name: "invalid json degrades to zero profile",
			raw:  `not json`,
			want: entity.Profile{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeProfile([]byte(tt.raw)))
		})
	}
}

func TestNormalizeProfileIdempotent(t *testing.T) {
	first := NormalizeProfile([]byte(`{"data":{"user":{"user_id":"7","full_name":"jane doe","email":"jane@x.io","role":"admin"}}}`))

	marshalled, err := json.Marshal(first)
	require.NoError(t, err)

	second := NormalizeProfile(marshalled)
	assert.Equal(t, first, second)
}
