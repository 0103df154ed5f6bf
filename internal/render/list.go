package render

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/KirkDiggler/bestiary/internal/entities/monster"
	"github.com/KirkDiggler/bestiary/internal/errors"
)

// RefTable writes the index as position, key and name columns
func RefTable(w io.Writer, refs []*monster.Ref) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tINDEX\tNAME")
	for i, ref := range refs {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", i, ref.Index, ref.Name)
	}
	if err := tw.Flush(); err != nil {
		return errors.Wrap(err, "failed to write ref table")
	}
	return nil
}

// RecordTable writes one summary row per record
func RecordTable(w io.Writer, records []*monster.Record) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "INDEX\tNAME\tCR\tSIZE\tTYPE\tALIGNMENT")
	for _, rec := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			rec.Index, rec.Name, FormatCR(rec.ChallengeRating), rec.Size, rec.Type, rec.Alignment)
	}
	if err := tw.Flush(); err != nil {
		return errors.Wrap(err, "failed to write record table")
	}
	return nil
}
