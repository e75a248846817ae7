package mailer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmailJobValidate(t *testing.T) {
	assert.NoError(t, EmailJob{To: "a@example.com", Template: "welcome"}.Validate())
	assert.NoError(t, EmailJob{To: "a@example.com", Text: "hi"}.Validate())
	assert.ErrorIs(t, EmailJob{Template: "welcome"}.Validate(), ErrInvalidJob)
	assert.ErrorIs(t, EmailJob{To: "a@example.com"}.Validate(), ErrInvalidJob)
}
