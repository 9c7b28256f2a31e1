package report

import (
	"encoding/csv"
	"os"
	"strconv"
)

func WriteLedgerCSV(path string, ledger []LedgerRow) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{"scenario", "step", "kind", "entity", "value", "upper"}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, r := range ledger {
		upper := ""
		if r.Upper != nil {
			upper = fmtFloat(*r.Upper)
		}
		row := []string{r.Scenario, r.Step, r.Kind, r.Entity, fmtFloat(r.Value), upper}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func WriteSummaryCSV(path string, rows []SummaryRow) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{
		"scenario",
		"step",
		"probability",
		"generation_mw",
		"renewable_available_mw",
		"renewable_used_mw",
		"load_shed_mw",
		"load_served_mw",
	}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, r := range rows {
		row := []string{
			r.Scenario,
			r.Step,
			fmtFloat(r.Probability),
			fmtFloat(r.Generation),
			fmtFloat(r.RenewableAvailable),
			fmtFloat(r.RenewableUsed),
			fmtFloat(r.LoadShed),
			fmtFloat(r.LoadServed),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func fmtFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
