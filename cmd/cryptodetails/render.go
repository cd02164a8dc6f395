package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"

	"github.com/seenimoa/cryptodetails/internal/lookup"
	"github.com/seenimoa/cryptodetails/pkg/models"
)

// renderState writes the terminal panel for st.
func renderState(w io.Writer, st lookup.State) {
	switch st.Phase() {
	case lookup.PhaseLoading:
		fmt.Fprintln(w, "Loading data...")
	case lookup.PhaseFailed:
		fmt.Fprintln(w, st.Message())
	case lookup.PhaseLoaded:
		q, _ := st.Quote()
		renderQuote(w, q)
	}
}

// renderQuote prints the quote details followed by a one-row ranking table.
func renderQuote(w io.Writer, q models.CryptoQuote) {
	cur := q.Currency
	if cur == "" {
		cur = "USD"
	}

	fmt.Fprintf(w, "%s (%s)\n\n", q.Name, q.Symbol)
	fmt.Fprintf(w, "  %-26s %s\n", "Price ("+cur+"):", humanize.Commaf(q.Price))
	fmt.Fprintf(w, "  %-26s %s\n", "Market Cap ("+cur+"):", humanize.CommafWithDigits(q.MarketCap, 2))
	fmt.Fprintf(w, "  %-26s %s\n", "24h Volume ("+cur+"):", humanize.CommafWithDigits(q.Volume24h, 2))
	fmt.Fprintf(w, "  %-26s %s\n", "24h Change:", formatPercent(q.PercentChange24h))
	fmt.Fprintf(w, "  %-26s %s\n", "Circulating Supply:", humanize.CommafWithDigits(q.CirculatingSupply, 0))
	if !q.LastUpdated.IsZero() {
		fmt.Fprintf(w, "  %-26s %s\n", "Last Updated:", q.LastUpdated.UTC().Format("2006-01-02 15:04:05 MST"))
	}
	fmt.Fprintln(w)

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Rank", "Name", "Price (" + cur + ")", "24h Change (%)"})
	table.SetAutoFormatHeaders(false)
	table.Append([]string{
		strconv.Itoa(q.Rank),
		q.Name,
		humanize.Commaf(q.Price),
		strconv.FormatFloat(q.PercentChange24h, 'f', 2, 64),
	})
	table.Render()
}

func formatPercent(p float64) string {
	return strconv.FormatFloat(p, 'f', 2, 64) + "%"
}

// renderJSON writes the state's wire form.
func renderJSON(w io.Writer, st lookup.State) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(st.View())
}
