package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dmitrijs2005/milestonegate/internal/client/client"
)

func printMilestone(w io.Writer, m *client.Milestone) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%s\n", m.ID)
	fmt.Fprintf(tw, "Title:\t%s\n", m.Title)
	fmt.Fprintf(tw, "Price:\t%s\n", formatMinor(m.PriceMinor))
	fmt.Fprintf(tw, "Status:\t%s (%s)\n", m.Status, m.Label)
	fmt.Fprintf(tw, "Freelancer:\t%s\n", m.FreelancerID)
	fmt.Fprintf(tw, "Client:\t%s\n", m.ClientID)
	fmt.Fprintf(tw, "Payment proof:\t%s\n", yesNo(m.HasPaymentProof))
	if m.DeliverableName != "" {
		fmt.Fprintf(tw, "Deliverable:\t%s (%d bytes)\n", m.DeliverableName, m.DeliverableSize)
	} else {
		fmt.Fprintf(tw, "Deliverable:\t-\n")
	}
	if m.WatermarkText != nil {
		fmt.Fprintf(tw, "Watermark:\t%q\n", *m.WatermarkText)
	}
	tw.Flush()
}

func printSignedURL(w io.Writer, u client.SignedURL) {
	fmt.Fprintln(w, u.URL)
	fmt.Fprintf(w, "content type %s, expires in %ds\n", u.ContentType, u.ExpiresIn)
}

// formatMinor renders minor units with two decimals. Currency is not
// tracked per milestone.
func formatMinor(v int64) string {
	sign := ""
	if v < 0 {
		sign, v = "-", -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
