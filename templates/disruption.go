package templates

import (
	"strings"

	"flightalert-service/internal/domain/entity"
)

// DisruptionType selects the message family for an alert
type DisruptionType string

const (
	Delay         DisruptionType = "DELAY"
	Cancelled     DisruptionType = "CANCELLED"
	GateChange    DisruptionType = "GATE_CHANGE"
	AdminOverride DisruptionType = "ADMIN_OVERRIDE"
)

type channelTemplates map[entity.Channel]string

var catalogue = map[string]map[DisruptionType]channelTemplates{
	"en": {
		Delay: {
			entity.ChannelEmail:    "Flight {flightNumber} is delayed by {delayMinutes} minutes.",
			entity.ChannelSMS:      "Flight {flightNumber} delayed {delayMinutes} mins.",
			entity.ChannelWhatsApp: "Flight {flightNumber} is delayed by {delayMinutes} minutes. Please check status.",
			entity.ChannelInApp:    "Your flight {flightNumber} is delayed by {delayMinutes} minutes.",
		},
		Cancelled: {
			entity.ChannelEmail:    "Flight {flightNumber} has been CANCELLED. Next steps: {nextSteps}",
			entity.ChannelSMS:      "Flight {flightNumber} CANCELLED. Check app for rebooking.",
			entity.ChannelWhatsApp: "Flight {flightNumber} CANCELLED. We apologize. Options: {nextSteps}",
			entity.ChannelInApp:    "Flight {flightNumber} has been cancelled. {nextSteps}",
		},
		GateChange: {
			entity.ChannelEmail:    "Flight {flightNumber} now departs from terminal {terminal}, gate {gate}.",
			entity.ChannelSMS:      "Flight {flightNumber}: new gate {gate}, terminal {terminal}.",
			entity.ChannelWhatsApp: "Flight {flightNumber} has moved to terminal {terminal}, gate {gate}. Please proceed there.",
		},
		AdminOverride: {
			entity.ChannelEmail: "[Admin Notice] Update for flight {flightNumber}: {reason}",
		},
	},
	"es": {
		Delay: {
			entity.ChannelEmail:    "El vuelo {flightNumber} tiene un retraso de {delayMinutes} minutos.",
			entity.ChannelSMS:      "Vuelo {flightNumber} retrasado {delayMinutes} mins.",
			entity.ChannelWhatsApp: "Vuelo {flightNumber} retrasado {delayMinutes} mins. Revise estado.",
		},
		Cancelled: {
			entity.ChannelEmail:    "El vuelo {flightNumber} ha sido CANCELADO. Siguientes pasos: {nextSteps}",
			entity.ChannelSMS:      "Vuelo {flightNumber} CANCELADO. Revise app.",
			entity.ChannelWhatsApp: "Vuelo {flightNumber} CANCELADO. Disculpe. Opciones: {nextSteps}",
		},
		GateChange: {
			entity.ChannelEmail: "El vuelo {flightNumber} sale ahora de la terminal {terminal}, puerta {gate}.",
			entity.ChannelSMS:   "Vuelo {flightNumber}: nueva puerta {gate}, terminal {terminal}.",
		},
		AdminOverride: {
			entity.ChannelEmail: "[Aviso] Actualización del vuelo {flightNumber}: {reason}",
		},
	},
}

var nextSteps = map[string]string{
	"en": "Rebook via app or visit valid-url.com",
	"es": "Reserve de nuevo en la app",
}

// Resolve returns the template for the language, disruption type and channel.
// Unknown languages fall back to English; a missing channel falls back to the email variant.
func Resolve(lang string, kind DisruptionType, channel entity.Channel) string {
	language, ok := catalogue[strings.ToLower(lang)]
	if !ok {
		language = catalogue[entity.DefaultLanguage]
	}
	family, ok := language[kind]
	if !ok {
		family = catalogue[entity.DefaultLanguage][kind]
	}
	if tpl, ok := family[channel]; ok {
		return tpl
	}
	return family[entity.ChannelEmail]
}

// NextSteps returns the rebooking instructions for a cancelled flight
func NextSteps(lang string) string {
	if steps, ok := nextSteps[strings.ToLower(lang)]; ok {
		return steps
	}
	return nextSteps[entity.DefaultLanguage]
}

// Vars are the substitution values for a template
type Vars map[string]string

// Render replaces every {name} placeholder present in vars
func Render(tpl string, vars Vars) string {
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(tpl)
}
