package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Freeze the version index into a content-addressed snapshot",
	Long: `Serialize the whole version index (files, versions, permission lists)
into a canonical CBOR object and store it in the content store.
The same index state always produces the same snapshot hash, so two
snapshots with equal hashes are byte-for-byte identical states.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := DV.Engine.TakeSnapshot(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Printf("✅ Snapshot %s\n", snap.ID())
		fmt.Printf("   %d entries, taken at %s\n",
			len(snap.Entries), time.Unix(snap.TakenAt, 0).Format(time.RFC1123))
		fmt.Printf("   (inspect with 'dv cat %s')\n", snap.ID().String()[:8])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(snapshotCmd)
}
