package main

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/amaumene/whirlwatch/internal/models"
	"github.com/amaumene/whirlwatch/internal/services/whirlwatch"
	"github.com/amaumene/whirlwatch/internal/stats"
	"github.com/amaumene/whirlwatch/internal/viewmodel"
)

const dateLayout = "2006-01-02"

func renderPage(w io.Writer, page viewmodel.Page, withAverages bool) {
	if page.TotalMatches == 0 {
		fmt.Fprintln(w, "No titles match.")
		if page.Suggestion != "" {
			fmt.Fprintf(w, "Did you mean %q?\n", page.Suggestion)
		}
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	header := "ID\tTITLE\tYEAR\tKIND\tSTATUS\tRATING\tTMDB\tLIST\tUPDATED"
	if withAverages {
		header += "\tAVG\tVOTES"
	}
	fmt.Fprintln(tw, header)
	for _, r := range page.Items {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s",
			r.ID, r.Title, year(r.ReleaseYear), r.MediaKind, r.WatchStatus,
			rating(r.PersonalRating), rating(r.ExternalRating), r.ListName,
			r.LastUpdatedAt.Format(dateLayout))
		if withAverages {
			fmt.Fprintf(tw, "\t%s\t%d", rating(r.ListAverageRating), r.RatingCount)
		}
		fmt.Fprintln(tw)
	}
	tw.Flush()
	fmt.Fprintf(w, "Page %d of %d (%d titles)\n", page.Number, page.TotalPages, page.TotalMatches)
}

func renderSummary(w io.Writer, s stats.Summary) {
	avg := "-"
	if !s.NoRatings() {
		avg = strconv.FormatFloat(s.AverageRating, 'f', 1, 64)
	}
	fmt.Fprintf(w, "%d titles: %d completed, %d in progress, %d not watched. Average rating %s over %d rated.\n",
		s.TotalCount, s.CompletedCount, s.InProgressCount, s.NotWatchedCount, avg, s.RatedCount)
}

func renderRecord(w io.Writer, r models.MediaRecord) {
	fmt.Fprintf(w, "%s (%s) [%s]\n", r.Title, year(r.ReleaseYear), r.MediaKind)
	fmt.Fprintf(w, "  record %d in %s, %s, TMDB %s\n", r.ID, r.ListName, r.WatchStatus, rating(r.ExternalRating))
	if r.Overview != "" {
		fmt.Fprintf(w, "  %s\n", r.Overview)
	}
}

func renderLists(w io.Writer, lists []whirlwatch.ListSummary) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tMEMBERS\tOWNER\tDESCRIPTION")
	for _, l := range lists {
		owner := ""
		if l.IsOwner {
			owner = "yes"
		}
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\n", l.ID, l.Name, l.UserCount, owner, l.Description)
	}
	tw.Flush()
}

func year(y *int) string {
	if y == nil {
		return "-"
	}
	return strconv.Itoa(*y)
}

func rating(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', 1, 64)
}
