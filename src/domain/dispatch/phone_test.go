package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePhone_LocalNumberGetsCountryCode(t *testing.T) {
	phone, ok := NormalizePhone("11999998888")
	assert.True(t, ok)
	assert.Equal(t, "+5511999998888", phone)
}

func TestNormalizePhone_AlreadyNormalizedRoundTrips(t *testing.T) {
	phone, ok := NormalizePhone("+5511999998888")
	assert.True(t, ok)
	assert.Equal(t, "+5511999998888", phone)
}

func TestNormalizePhone_StripsFormatting(t *testing.T) {
	phone, ok := NormalizePhone("(11) 99999-8888")
	assert.True(t, ok)
	assert.Equal(t, "+5511999998888", phone)
}

func TestNormalizePhone_TooShortRejected(t *testing.T) {
	phone, ok := NormalizePhone("123")
	assert.False(t, ok)
	assert.Empty(t, phone)
}

func TestNormalizePhone_TooLongRejected(t *testing.T) {
	_, ok := NormalizePhone("55119999988881234")
	assert.False(t, ok)
}

func TestNormalizePhone_ForeignCountryCodeRejected(t *testing.T) {
	// 12-13 digit numbers must already carry the default country code;
	// prefixing would push them out of range.
	_, ok := NormalizePhone("441199999888")
	assert.False(t, ok)
}

func TestNormalizePhone_EmptyRejected(t *testing.T) {
	_, ok := NormalizePhone("")
	assert.False(t, ok)
}

func TestPhoneVariants_CoversStorageForms(t *testing.T) {
	variants := PhoneVariants("+5511999998888")
	assert.Equal(t, []string{"+5511999998888", "5511999998888", "11999998888"}, variants)
}

func TestPhoneVariants_ForeignPrefixKeptIntact(t *testing.T) {
	// Only the default country code is stripped for the local variant.
	variants := PhoneVariants("+441199999888")
	assert.Equal(t, []string{"+441199999888", "441199999888"}, variants)
}

func TestJobStatus_IsTerminal(t *testing.T) {
	assert.False(t, StatusPending.IsTerminal())
	assert.False(t, StatusSending.IsTerminal())
	assert.True(t, StatusSent.IsTerminal())
	assert.True(t, StatusError.IsTerminal())
}

func TestJob_CanRetry(t *testing.T) {
	job := Job{Attempts: 2}
	assert.True(t, job.CanRetry())

	job.Attempts = MaxAttempts
	assert.False(t, job.CanRetry())
}
