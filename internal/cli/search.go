package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/lovejourney/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search memories and plans",
		Long:  "Case-insensitive search over memory titles, content and tags, and plan titles and descriptions.",
		Run:   runSearch,
	}

	cmd.Flags().StringP("collection", "c", "", "Limit to memories or plans")
	cmd.Flags().StringP("tag", "t", "", "Only memories with this tag")
	cmd.Flags().IntP("limit", "l", 20, "Max results per collection")

	RootCmd.AddCommand(cmd)
}

func runSearch(cmd *cobra.Command, args []string) {
	collection, _ := cmd.Flags().GetString("collection")
	tag, _ := cmd.Flags().GetString("tag")
	limit, _ := cmd.Flags().GetInt("limit")

	switch store.Collection(collection) {
	case "", store.CollectionMemories, store.CollectionPlans:
	default:
		exitErr("search", fmt.Errorf("invalid collection %q (valid: memories, plans)", collection))
	}

	s, err := openStore(cmd.Context())
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	res, err := s.Search(cmd.Context(), store.SearchParams{
		Query:      strings.Join(args, " "),
		Collection: store.Collection(collection),
		Tag:        tag,
		Limit:      limit,
	})
	if err != nil {
		exitErr("search", err)
	}

	if !textOutput() {
		printJSON(cmd, res)
		return
	}
	w := cmd.OutOrStdout()
	for _, m := range res.Memories {
		fmt.Fprintf(w, "%s %s  %s\n", dimStyle.Render("memory"), headerStyle.Render(m.Title), dimStyle.Render(m.ID))
	}
	for _, p := range res.Plans {
		fmt.Fprintf(w, "%s   %s  %s\n", dimStyle.Render("plan"), headerStyle.Render(p.Title), dimStyle.Render(p.ID))
	}
}
