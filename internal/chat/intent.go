package chat

import "regexp"

// Intent is the dispatcher's routing decision for a message that is not
// already part of a booking dialogue.
type Intent int

const (
	IntentOther Intent = iota
	IntentBooking
)

// IntentClassifier decides whether a free-form message asks to book an
// appointment. Pluggable so the pattern matcher below can be swapped for a
// model-backed classifier.
type IntentClassifier interface {
	Classify(message string) Intent
}

// PatternClassifier matches negative patterns before positive ones: phrasings
// typical of eligibility, FAQ, and greeting messages win over booking
// vocabulary they happen to contain. Missing a booking request is recoverable
// through the assistant; hijacking an FAQ question into the booking flow is
// not.
type PatternClassifier struct {
	negative []*regexp.Regexp
	positive []*regexp.Regexp
}

func NewPatternClassifier() *PatternClassifier {
	return &PatternClassifier{
		negative: []*regexp.Regexp{
			// Interrogatives opening a question. Anchored to the start of a
			// sentence: bare "que"/"como" mid-phrase is everyday Spanish,
			// not an FAQ signal.
			regexp.MustCompile(`(?i)(?:^|[¿.!?]\s*)(?:cu[aá]nt[oa]s?|cu[aá]ndo|c[oó]mo|d[oó]nde|qu[eé]|cu[aá]l(?:es)?|por qu[eé])\b`),
			regexp.MustCompile(`(?i)\b(requisitos?|empleados?|precios?|costes?|costos?|horarios?|ayudas?|subvenci[oó]n|elegibilidad)\b`),
			regexp.MustCompile(`(?i)^\s*(hola|buen[oa]s(?:\s+(d[ií]as|tardes|noches))?)\s*[.!]?\s*$`),
		},
		positive: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(agendar|reservar|programar|solicitar|pedir)\b.*\b(cita|reserva|consulta)\b`),
			regexp.MustCompile(`(?i)\b(quiero|necesito|me gustar[ií]a|deseo)\b.*\b(cita|reserva|consulta)\b`),
			regexp.MustCompile(`(?i)\bcita\b`),
		},
	}
}

func (c *PatternClassifier) Classify(message string) Intent {
	for _, re := range c.negative {
		if re.MatchString(message) {
			return IntentOther
		}
	}
	for _, re := range c.positive {
		if re.MatchString(message) {
			return IntentBooking
		}
	}
	return IntentOther
}
