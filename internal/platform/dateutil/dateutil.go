package dateutil

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DayKeyLayout es el formato canónico de día calendario (clave de partición
// de medication_logs y filtro de "hoy" en las queries).
const DayKeyLayout = "2006-01-02"

// TodayKey devuelve la clave del día actual (inicio del día local).
// Estable dentro del mismo día: llamadas repetidas devuelven lo mismo.
func TodayKey() string {
	return DayKey(time.Now())
}

// DayKey normaliza cualquier instante al inicio de su día local.
func DayKey(t time.Time) string {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location()).Format(DayKeyLayout)
}

// ParseClock valida y normaliza una hora "HH:MM" de 24 horas.
// Acepta también "HH:MM:SS" (la parte de segundos se descarta).
// Rechaza todo lo demás: "24:00", "9:5", vacío, etc.
func ParseClock(s string) (string, error) {
	h, m, ok := splitClock(s)
	if !ok {
		return "", fmt.Errorf("invalid time %q: want HH:MM", s)
	}
	return fmt.Sprintf("%02d:%02d", h, m), nil
}

// ClockMinutes devuelve minutos desde medianoche para ordenar medicaciones
// y para el umbral "ya pasó su hora" del notificador. -1 si es inválida.
func ClockMinutes(s string) int {
	h, m, ok := splitClock(s)
	if !ok {
		return -1
	}
	return h*60 + m
}

// NowClockMinutes devuelve los minutos transcurridos del día local actual.
func NowClockMinutes() int {
	now := time.Now()
	return now.Hour()*60 + now.Minute()
}

// FormatClock renderiza "HH:MM" (24h) en formato de display 12h: "9:00 AM".
// Con input malformado devuelve el string original tal cual, nunca paniquea.
func FormatClock(s string) string {
	h, m, ok := splitClock(s)
	if !ok {
		return s
	}

	suffix := "AM"
	if h >= 12 {
		suffix = "PM"
	}
	h12 := h % 12
	if h12 == 0 {
		h12 = 12
	}
	return fmt.Sprintf("%d:%02d %s", h12, m, suffix)
}

func splitClock(s string) (hour, minute int, ok bool) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, 0, false
	}
	// Exigimos dos dígitos en ambas partes ("9:5" no es una hora válida).
	if len(parts[0]) != 2 || len(parts[1]) != 2 {
		return 0, 0, false
	}

	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, false
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, 0, false
	}

	// los segundos se descartan, pero igual tienen que ser una hora válida
	if len(parts) == 3 {
		if len(parts[2]) != 2 {
			return 0, 0, false
		}
		sec, err := strconv.Atoi(parts[2])
		if err != nil || sec < 0 || sec > 59 {
			return 0, 0, false
		}
	}

	return h, m, true
}
