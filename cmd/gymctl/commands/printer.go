package commands

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"

	"alcyxob/gym-membership/internal/domain"
)

var (
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed, color.Bold)
	cyan   = color.New(color.FgCyan)
)

func printSuccess(w io.Writer, format string, a ...any) {
	green.Fprintf(w, "✓ "+format+"\n", a...)
}

func printWarning(w io.Writer, format string, a ...any) {
	yellow.Fprintf(w, "! "+format+"\n", a...)
}

func printError(w io.Writer, err error) {
	red.Fprintf(w, "Error: %v\n", err)
}

func statusText(s domain.Status) string {
	switch s {
	case domain.StatusExpired:
		return red.Sprint(s)
	case domain.StatusExpiringSoon:
		return yellow.Sprint(s)
	default:
		return green.Sprint(s)
	}
}

func daysText(days int, ok bool) string {
	if !ok {
		return "-"
	}
	return strconv.Itoa(days)
}

func money(v float64) string {
	return fmt.Sprintf("%.0f", v)
}
