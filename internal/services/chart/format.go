package chart

import (
	"fmt"
	"math"

	"github.com/bobmcallan/vire-ticker/internal/models"
)

// Colors used for the change label and trend line.
const (
	ColorPositive = "#16a34a"
	ColorNegative = "#dc2626"
	ColorNeutral  = "#6b7280"
)

// DirectionColor maps a change direction to its display color.
func DirectionColor(d models.Direction) string {
	switch d {
	case models.DirectionPositive:
		return ColorPositive
	case models.DirectionNegative:
		return ColorNegative
	default:
		return ColorNeutral
	}
}

// FormatPrice renders a close as "$185.06", or "" when absent.
func FormatPrice(v *float64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("$%.2f", *v)
}

// FormatChange renders a change as "+$25.04" or "-$18.00", or "" when absent.
func FormatChange(v *float64) string {
	if v == nil {
		return ""
	}
	sign := "+"
	if *v < 0 {
		sign = "-"
	}
	return fmt.Sprintf("%s$%.2f", sign, math.Abs(*v))
}
