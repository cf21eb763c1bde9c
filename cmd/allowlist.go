package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/nftterminal/nftterm/internal/allowlist"
	"github.com/nftterminal/nftterm/internal/nft"
	"github.com/nftterminal/nftterm/internal/ui"
)

var (
	allowlistOut     string
	allowlistExclude []string
	allowlistJSON    bool
)

var allowlistCmd = &cobra.Command{
	Use:   "allowlist",
	Short: "Allowlist CSV tools and Merkle roots",
	Long: `Work with allowlists stored as CSV or plain text files (one address per
line or comma separated; "-" reads stdin). Invalid entries are skipped and
duplicates are removed regardless of letter case, keeping first-seen order.`,
}

var allowlistCleanCmd = &cobra.Command{
	Use:   "clean <file>...",
	Short: "Merge, validate and de-duplicate allowlist files",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		l, err := readAllowlists(cmd, args)
		if err != nil {
			return err
		}
		for _, a := range allowlistExclude {
			l.Remove(a)
		}

		csv := l.CSV()
		if csv != "" {
			csv += "\n"
		}
		if allowlistOut == "" {
			fmt.Fprint(cmd.OutOrStdout(), csv)
			return nil
		}
		if err := os.WriteFile(allowlistOut, []byte(csv), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", allowlistOut, err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Wrote %d addresses to %s", l.Len(), allowlistOut)))
		return nil
	},
}

var allowlistRootCmd = &cobra.Command{
	Use:   "root <file>...",
	Short: "Merkle root of an allowlist (OpenZeppelin MerkleProof compatible)",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		l, err := readAllowlists(cmd, args)
		if err != nil {
			return err
		}
		root, err := l.Root()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if allowlistJSON {
			return json.NewEncoder(out).Encode(map[string]interface{}{
				"root":      root.Hex(),
				"addresses": l.Len(),
			})
		}
		fmt.Fprintln(out, ui.KeyValueBlock("Allowlist", [][2]string{
			{"Addresses", fmt.Sprintf("%d", l.Len())},
			{"Merkle Root", root.Hex()},
		}))
		return nil
	},
}

var allowlistProofCmd = &cobra.Command{
	Use:   "proof <file> <address>",
	Short: "Merkle proof for one allowlisted address",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, err := nft.ParseAddress(args[1])
		if err != nil {
			return err
		}
		l, err := readAllowlists(cmd, args[:1])
		if err != nil {
			return err
		}
		tree, err := l.BuildTree()
		if err != nil {
			return err
		}
		proof, err := tree.Proof(addr)
		if err != nil {
			return err
		}
		if !allowlist.Verify(tree.Root(), addr, proof) {
			return fmt.Errorf("proof for %s does not verify against %s", addr.Hex(), tree.Root().Hex())
		}

		hexes := make([]string, len(proof))
		for i, p := range proof {
			hexes[i] = p.Hex()
		}
		out := cmd.OutOrStdout()
		if allowlistJSON {
			return json.NewEncoder(out).Encode(map[string]interface{}{
				"address": addr.Hex(),
				"root":    tree.Root().Hex(),
				"proof":   hexes,
			})
		}
		fmt.Fprintln(out, ui.StyleTitle.Render("Proof for "+addr.Hex()))
		for _, h := range hexes {
			fmt.Fprintln(out, "  "+ui.Addr(h))
		}
		fmt.Fprintln(out, ui.Meta("root "+tree.Root().Hex()))
		return nil
	},
}

// readAllowlists merges the named files ("-" for stdin) into one list.
func readAllowlists(cmd *cobra.Command, paths []string) (*allowlist.List, error) {
	l := allowlist.New()
	for _, p := range paths {
		var r io.Reader
		if p == "-" {
			r = cmd.InOrStdin()
		} else {
			f, err := os.Open(p)
			if err != nil {
				return nil, err
			}
			defer f.Close()
			r = f
		}
		added, skipped, err := l.ImportCSV(r)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		if skipped > 0 {
			fmt.Fprintln(cmd.ErrOrStderr(), ui.Warn(fmt.Sprintf("%s: skipped %d invalid entries", p, skipped)))
		}
		fmt.Fprintln(cmd.ErrOrStderr(), ui.Meta(fmt.Sprintf("%s: %d new addresses", p, added)))
	}
	return l, nil
}

func init() {
	allowlistCleanCmd.Flags().StringVarP(&allowlistOut, "out", "o", "", "write the cleaned list here instead of stdout")
	allowlistCleanCmd.Flags().StringSliceVar(&allowlistExclude, "exclude", nil, "addresses to drop (repeatable)")
	allowlistRootCmd.Flags().BoolVar(&allowlistJSON, "json", false, "print as JSON")
	allowlistProofCmd.Flags().BoolVar(&allowlistJSON, "json", false, "print as JSON")

	allowlistCmd.AddCommand(allowlistCleanCmd, allowlistRootCmd, allowlistProofCmd)
}
