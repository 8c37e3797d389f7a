package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/lovejourney/internal/model"
)

func init() {
	memoryCmd := &cobra.Command{
		Use:     "memory",
		Aliases: []string{"mem"},
		Short:   "Manage the memory gallery",
	}

	put := &cobra.Command{
		Use:   "put [content]",
		Short: "Add or replace a memory",
		Long:  "Add a memory, or replace one with --id. Content can be a positional arg or piped via stdin.",
		Run:   runMemoryPut,
	}
	put.Flags().String("id", "", "Memory id (default: new id)")
	put.Flags().StringP("title", "T", "", "Title")
	put.Flags().String("date", "", "Date of the memory (default: today)")
	put.Flags().String("type", string(model.MemoryText), "Type: text, voice, image, mixed")
	put.Flags().StringP("media", "m", "", "Comma-separated media references (max 9)")
	put.Flags().StringP("tags", "t", "", "Comma-separated tags")

	list := &cobra.Command{
		Use:   "list",
		Short: "List memories, newest first",
		Run:   runMemoryList,
	}
	list.Flags().IntP("limit", "l", 0, "Max results (0 = all)")

	get := &cobra.Command{
		Use:   "get <id>",
		Short: "Show one memory",
		Args:  cobra.ExactArgs(1),
		Run:   runMemoryGet,
	}

	rm := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a memory",
		Args:  cobra.ExactArgs(1),
		Run:   runMemoryRm,
	}

	rmMedia := &cobra.Command{
		Use:   "rm-media <ref>",
		Short: "Remove one media reference, keeping the memory",
		Args:  cobra.ExactArgs(1),
		Run:   runMemoryRmMedia,
	}

	memoryCmd.AddCommand(put, list, get, rm, rmMedia)
	RootCmd.AddCommand(memoryCmd)
}

func runMemoryPut(cmd *cobra.Command, args []string) {
	f := cmd.Flags()
	id, _ := f.GetString("id")
	title, _ := f.GetString("title")
	date, _ := f.GetString("date")
	typ, _ := f.GetString("type")
	media, _ := f.GetString("media")
	tags, _ := f.GetString("tags")

	content, err := readContent(args)
	if err != nil {
		exitErr("read stdin", err)
	}

	if id == "" {
		id = model.NewID()
	}
	if date == "" {
		date = clk.Now().Format("2006-01-02")
	}

	m := model.Memory{
		ID:      id,
		Date:    date,
		Title:   title,
		Type:    model.MemoryType(typ),
		Content: strings.TrimSpace(content),
		Images:  splitList(media),
		Tags:    splitList(tags),
	}
	if m.Images == nil {
		m.Images = []string{}
	}
	if m.Tags == nil {
		m.Tags = []string{}
	}

	s, err := openStore(cmd.Context())
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	if err := s.PutMemory(cmd.Context(), m); err != nil {
		exitErr("put memory", err)
	}
	printJSON(cmd, m)
}

func runMemoryList(cmd *cobra.Command, args []string) {
	limit, _ := cmd.Flags().GetInt("limit")

	s, err := openStore(cmd.Context())
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	memories, err := s.Memories(cmd.Context())
	if err != nil {
		exitErr("list memories", err)
	}
	model.SortMemories(memories, clk.Now().Location())
	if limit > 0 && len(memories) > limit {
		memories = memories[:limit]
	}

	if !textOutput() {
		printJSON(cmd, memories)
		return
	}
	w := cmd.OutOrStdout()
	for _, m := range memories {
		fmt.Fprintf(w, "%s  %s  %s\n", dimStyle.Render(m.Date), headerStyle.Render(m.Title), dimStyle.Render(m.ID))
		if m.Content != "" {
			fmt.Fprintf(w, "    %s\n", m.Content)
		}
		if n := len(m.Media()); n > 0 {
			fmt.Fprintf(w, "    %s\n", dimStyle.Render(fmt.Sprintf("%d media", n)))
		}
	}
}

func runMemoryGet(cmd *cobra.Command, args []string) {
	s, err := openStore(cmd.Context())
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	m, err := s.GetMemory(cmd.Context(), args[0])
	if err != nil {
		exitErr("get memory", err)
	}
	printJSON(cmd, m)
}

func runMemoryRm(cmd *cobra.Command, args []string) {
	s, err := openStore(cmd.Context())
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	if err := s.DeleteMemory(cmd.Context(), args[0]); err != nil {
		exitErr("delete memory", err)
	}
	printOK(cmd, map[string]any{"deleted": args[0]})
}

func runMemoryRmMedia(cmd *cobra.Command, args []string) {
	s, err := openStore(cmd.Context())
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	m, err := s.RemoveMedia(cmd.Context(), args[0])
	if err != nil {
		exitErr("remove media", err)
	}
	printJSON(cmd, m)
}
