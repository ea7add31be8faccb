package chat

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ingenieria-ia/booking-chat-backend/internal/availability"
)

func TestCodecRoundTrip(t *testing.T) {
	codec := NewCodec("test-secret")

	in := &Session{
		Step:    StepTime,
		Name:    "María García",
		Email:   "maria@example.com",
		Service: "Inteligencia Artificial (hasta 6.000€)",
		Date:    "2026-01-05",
		OfferedTimes: []string{"10:30", "11:00"},
	}

	msg, err := codec.Encode("¿A qué hora?", in)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(msg, "¿A qué hora?"))

	out, ok := codec.Decode(msg)
	require.True(t, ok)
	assert.Equal(t, in, out)
}

func TestCodecRoundTripOfferedDates(t *testing.T) {
	codec := NewCodec("test-secret")

	in := &Session{
		Step: StepDate,
		OfferedDates: []availability.Slot{
			{Date: "2026-01-05", FormattedDate: "5 de enero de 2026", Times: []string{"10:30"}},
		},
	}

	msg, err := codec.Encode("Fechas disponibles:", in)
	require.NoError(t, err)

	out, ok := codec.Decode(msg)
	require.True(t, ok)
	assert.Equal(t, in, out)
}

func TestDecodeRejectsTamperedFragment(t *testing.T) {
	codec := NewCodec("test-secret")

	msg, err := codec.Encode("hola", &Session{Step: StepName})
	require.NoError(t, err)

	tampered := strings.Replace(msg, stateMarker, stateMarker+"x", 1)
	_, ok := codec.Decode(tampered)
	assert.False(t, ok)
}

func TestDecodeRejectsWrongSecret(t *testing.T) {
	a := NewCodec("secret-a")
	b := NewCodec("secret-b")

	msg, err := a.Encode("hola", &Session{Step: StepEmail, Name: "Ana"})
	require.NoError(t, err)

	_, ok := b.Decode(msg)
	assert.False(t, ok)
}

func TestDecodeMalformedInput(t *testing.T) {
	codec := NewCodec("test-secret")

	for _, msg := range []string{
		"",
		"texto sin estado",
		"__STATE__",
		"__STATE____END__",
		"__STATE__no-dot__END__",
		"__STATE__abc.def__END__",
		"__STATE__%%%.sig__END__",
	} {
		_, ok := codec.Decode(msg)
		assert.False(t, ok, "input %q", msg)
	}
}

func TestStripFragment(t *testing.T) {
	codec := NewCodec("test-secret")

	msg, err := codec.Encode("¿Tu nombre?", &Session{Step: StepName})
	require.NoError(t, err)

	assert.Equal(t, "¿Tu nombre?", StripFragment(msg))
	assert.Equal(t, "sin fragmento", StripFragment("sin fragmento"))
	assert.Equal(t, "cortado", StripFragment("cortado __STATE__abc"))
}
