package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateInvite(t *testing.T) {
	valid := Invite{Name: "Ann", Email: "ann@x.io", Password: "pw"}

	tests := []struct {
		name    string
		modify  func(*Invite)
		wantErr string
	}{
		{name: "valid", modify: func(*Invite) {}},
		{name: "missing name", modify: func(in *Invite) { in.Name = "" }, wantErr: "name is required"},
		{name: "missing email", modify: func(in *Invite) { in.Email = " " }, wantErr: "email is required"},
		{name: "bad email", modify: func(in *Invite) { in.Email = "not-an-email" }, wantErr: "invalid email address"},
		{name: "blank password", modify: func(in *Invite) { in.Password = "  " }, wantErr: "password is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.modify(&in)

			err := ValidateInvite(&in)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestInvite_NormalizeAndComplete(t *testing.T) {
	in := Invite{Name: "  Ann ", Email: " ann@x.io ", Password: " pw "}
	in.Normalize()

	assert.Equal(t, "Ann", in.Name)
	assert.Equal(t, "ann@x.io", in.Email)
	assert.Equal(t, " pw ", in.Password)
	assert.True(t, in.Complete())

	assert.False(t, (&Invite{Name: "Ann", Email: "ann@x.io"}).Complete())
}
