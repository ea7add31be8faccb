package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPatternClassifier(t *testing.T) {
	c := NewPatternClassifier()

	booking := []string{
		"Quiero agendar una cita",
		"quiero una cita",
		"Necesito reservar una consulta",
		"me gustaría pedir una cita para la semana que viene",
		"cita",
	}
	for _, msg := range booking {
		assert.Equal(t, IntentBooking, c.Classify(msg), msg)
	}

	other := []string{
		"¿Cuántos empleados necesito?",
		"¿Qué es el programa KIT CONSULTING?",
		"¿Cuánto cuesta el servicio de IA?",
		"¿Cómo funciona la subvención?",
		"¿Cuándo puedo llamar por teléfono?",
		"hola",
		"Buenos días",
		"gracias por la información",
		// Mentions booking vocabulary inside an FAQ phrasing.
		"¿Dónde puedo ver mi cita?",
	}
	for _, msg := range other {
		assert.Equal(t, IntentOther, c.Classify(msg), msg)
	}
}
