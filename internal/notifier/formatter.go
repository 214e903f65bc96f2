package notifier

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"SantaClicker/internal/economy"
	"SantaClicker/internal/model"
)

var (
	thousand = decimal.NewFromInt(1_000)
	million  = decimal.NewFromInt(1_000_000)
)

// FormatMagnitude renders a quantity for display: whole numbers below one
// thousand, one decimal with a K suffix below one million, one decimal with an
// M suffix above. Digits are rounded half away from zero.
func FormatMagnitude(x float64) string {
	switch {
	case math.IsNaN(x):
		return "NaN"
	case math.IsInf(x, 1):
		return "∞"
	case math.IsInf(x, -1):
		return "-∞"
	}

	d := decimal.NewFromFloat(x)
	switch {
	case x >= 1_000_000:
		return d.Div(million).StringFixed(1) + "M"
	case x >= 1_000:
		return d.Div(thousand).StringFixed(1) + "K"
	default:
		return d.StringFixed(0)
	}
}

// formatAmount renders an effect amount with no trailing zeros.
func formatAmount(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return FormatMagnitude(v)
	}
	return decimal.NewFromFloat(v).String()
}

// FormatEffect renders one effect line, "+1 click Cookie" or "+0.5/sec Cookie".
func FormatEffect(eff model.UpgradeEffect) string {
	switch eff.Kind {
	case model.EffectClick:
		return fmt.Sprintf("+%s click %s", formatAmount(eff.Amount), eff.Currency)
	case model.EffectPassive:
		return fmt.Sprintf("+%s/sec %s", formatAmount(eff.Amount), eff.Currency)
	default:
		return fmt.Sprintf("+%s %s", formatAmount(eff.Amount), eff.Currency)
	}
}

// FormatUpgradeDescription renders the button text of an upgrade:
//
//	Rolling Pin (Lvl 2)
//	+1 click GingerBread
//	Cost: 13 GingerBread
func FormatUpgradeDescription(v economy.UpgradeView) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (Lvl %d)\n", v.Name, v.Level)
	for _, eff := range v.Effects {
		b.WriteString(FormatEffect(eff))
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "Cost: %s %s", FormatMagnitude(v.Cost), v.CostCurrency)
	return b.String()
}

// FormatCurrency renders one currency summary line.
func FormatCurrency(cv economy.CurrencyView) string {
	return fmt.Sprintf("%s: %s | x%s click | %s/sec",
		cv.Currency, FormatMagnitude(cv.Balance), formatAmount(cv.ClickMultiplier), formatAmount(cv.PassiveRate))
}

// FormatState renders every currency, one per line.
func FormatState(view economy.StateView) string {
	lines := make([]string, 0, len(view.Currencies))
	for _, cv := range view.Currencies {
		lines = append(lines, FormatCurrency(cv))
	}
	return strings.Join(lines, "\n")
}
