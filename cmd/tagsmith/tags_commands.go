package main

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"tagsmith/internal/tagsheet"
	"tagsmith/internal/tagstore"
)

func newTagsCommand(ctx *commandContext) *cobra.Command {
	tagsCmd := &cobra.Command{
		Use:   "tags",
		Short: "Inspect and edit per-tag settings",
	}

	tagsCmd.AddCommand(newTagsListCommand(ctx))
	tagsCmd.AddCommand(newTagsStatusesCommand(ctx))
	tagsCmd.AddCommand(newTagsShowCommand(ctx))
	tagsCmd.AddCommand(newTagsEnableCommand(ctx, true))
	tagsCmd.AddCommand(newTagsEnableCommand(ctx, false))
	tagsCmd.AddCommand(newTagsSetCommand(ctx))

	return tagsCmd
}

func newTagsListCommand(ctx *commandContext) *cobra.Command {
	var includeDisabled bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tags with their effective settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.tagStore()
			if err != nil {
				return err
			}

			resolved := store.List(includeDisabled)
			rows := make([][]string, 0, len(resolved))
			for _, settings := range resolved {
				rows = append(rows, []string{
					store.DisplayName(settings.Tag),
					settings.Category,
					yesNo(settings.Enabled),
					yesNo(settings.MarkersEnabled),
					formatDuration(settings.RequiredSceneTagDuration),
					formatFloat(settings.MinMarkerDuration),
					formatFloat(settings.MaxGap),
				})
			}

			out := cmd.OutOrStdout()
			if len(rows) == 0 {
				fmt.Fprintln(out, "No tags found")
				return nil
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Tag", "Category", "Enabled", "Markers", "Required Duration", "Min Marker", "Max Gap"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight},
			))
			total, enabled := store.Count()
			fmt.Fprintf(out, "%d tags, %d enabled\n", total, enabled)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&includeDisabled, "all", "a", false, "Include disabled tags")
	return cmd
}

func newTagsStatusesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "statuses",
		Short: "Show the enabled/disabled status of every tag",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.tagStore()
			if err != nil {
				return err
			}

			statuses := store.AllStatuses()
			keys := make([]string, 0, len(statuses))
			for key := range statuses {
				keys = append(keys, key)
			}
			sort.Strings(keys)

			out := cmd.OutOrStdout()
			if len(keys) == 0 {
				fmt.Fprintln(out, "No tags found")
				return nil
			}
			rows := make([][]string, 0, len(keys))
			for _, key := range keys {
				rows = append(rows, []string{store.DisplayName(key), yesNo(statuses[key])})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Tag", "Enabled"},
				rows,
				[]columnAlignment{alignLeft, alignLeft},
			))
			fmt.Fprintf(out, "Enabled: %s\n", strings.Join(store.EnabledTags(), ", "))
			return nil
		},
	}
}

func newTagsShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <tag>",
		Short: "Show the effective settings for one tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.tagStore()
			if err != nil {
				return err
			}

			settings := store.Resolve(args[0])
			defaults := store.DefaultValues()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Tag:               %s\n", store.DisplayName(settings.Tag))
			fmt.Fprintf(out, "Category:          %s\n", settings.Category)
			fmt.Fprintf(out, "Enabled:           %s\n", yesNo(settings.Enabled))
			fmt.Fprintf(out, "Markers enabled:   %s\n", yesNo(settings.MarkersEnabled))
			fmt.Fprintf(out, "Required duration: %s\n", formatDuration(settings.RequiredSceneTagDuration))
			fmt.Fprintf(out, "Min marker:        %s\n", formatFloat(settings.MinMarkerDuration))
			fmt.Fprintf(out, "Max gap:           %s\n", formatFloat(settings.MaxGap))
			fmt.Fprintf(out, "Sheet defaults:    duration=%s min_marker=%s max_gap=%s markers=%s\n",
				orDash(defaults.RequiredSceneTagDuration),
				orDash(defaults.MinMarkerDuration),
				orDash(defaults.MaxGap),
				yesNo(defaults.MarkersEnabled))
			return nil
		},
	}
}

func newTagsEnableCommand(ctx *commandContext, enable bool) *cobra.Command {
	use, short := "enable <tag>...", "Enable tags"
	if !enable {
		use, short = "disable <tag>...", "Disable tags"
	}

	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.tagStore()
			if err != nil {
				return err
			}

			statuses := make(map[string]bool, len(args))
			for _, name := range args {
				statuses[name] = enable
			}
			changes, err := store.UpdateEnabledStatus(cmd.Context(), statuses)
			if err != nil {
				return err
			}
			recordHistory(cmd.Context(), ctx, changes)

			out := cmd.OutOrStdout()
			if len(changes) == 0 {
				fmt.Fprintln(out, "No changes (already up to date)")
				return nil
			}
			for _, change := range changes {
				fmt.Fprintf(out, "%s: %s %s -> %s\n", change.Tag, change.Field, orDash(change.Old), orDash(change.New))
			}
			return nil
		},
	}
}

func newTagsSetCommand(ctx *commandContext) *cobra.Command {
	var (
		enabledFlag  string
		markersFlag  string
		durationFlag string
		minMarker    string
		maxGap       string
		clearFields  []string
	)

	cmd := &cobra.Command{
		Use:   "set <tag>",
		Short: "Update settings for one tag",
		Long: `Update settings for one tag. Only the flags you pass are written;
everything else keeps its stored value. Use --clear to blank fields so
they inherit the sheet defaults again.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.tagStore()
			if err != nil {
				return err
			}

			patch, err := buildPatch(enabledFlag, markersFlag, durationFlag, minMarker, maxGap, clearFields)
			if err != nil {
				return err
			}
			if patch.IsZero() {
				return fmt.Errorf("nothing to update: pass at least one setting flag or --clear")
			}

			changes, err := store.UpdateSettings(cmd.Context(), map[string]tagstore.Patch{args[0]: patch})
			if err != nil {
				return err
			}
			recordHistory(cmd.Context(), ctx, changes)

			out := cmd.OutOrStdout()
			if len(changes) == 0 {
				fmt.Fprintln(out, "No changes (already up to date)")
				return nil
			}
			for _, change := range changes {
				fmt.Fprintf(out, "%s: %s %s -> %s\n", change.Tag, change.Field, orDash(change.Old), orDash(change.New))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&enabledFlag, "enabled", "", "Enable or disable the tag (true/false)")
	cmd.Flags().StringVar(&markersFlag, "markers", "", "Enable or disable markers (true/false)")
	cmd.Flags().StringVar(&durationFlag, "required-duration", "", `Required scene tag duration ("20", "15s", or "35%")`)
	cmd.Flags().StringVar(&minMarker, "min-marker-duration", "", "Minimum marker duration in seconds")
	cmd.Flags().StringVar(&maxGap, "max-gap", "", "Maximum gap in seconds")
	cmd.Flags().StringSliceVar(&clearFields, "clear", nil,
		"Fields to blank so they inherit defaults (enabled, markers, required-duration, min-marker-duration, max-gap)")
	return cmd
}

func buildPatch(enabledFlag, markersFlag, durationFlag, minMarker, maxGap string, clearFields []string) (tagstore.Patch, error) {
	var patch tagstore.Patch

	if enabledFlag != "" {
		value, err := strconv.ParseBool(enabledFlag)
		if err != nil {
			return patch, fmt.Errorf("--enabled must be true or false")
		}
		patch.Enabled = tagstore.SetBool(value)
	}
	if markersFlag != "" {
		value, err := strconv.ParseBool(markersFlag)
		if err != nil {
			return patch, fmt.Errorf("--markers must be true or false")
		}
		patch.MarkersEnabled = tagstore.SetBool(value)
	}
	if durationFlag != "" {
		duration, err := tagsheet.ParseDuration(durationFlag)
		if err != nil {
			return patch, fmt.Errorf("--required-duration: %v", err)
		}
		if duration == nil {
			patch.RequiredSceneTagDuration = tagstore.Clear()
		} else {
			patch.RequiredSceneTagDuration = tagstore.SetDuration(*duration)
		}
	}
	if minMarker != "" {
		value, err := strconv.ParseFloat(minMarker, 64)
		if err != nil {
			return patch, fmt.Errorf("--min-marker-duration must be a number")
		}
		patch.MinMarkerDuration = tagstore.SetNumber(value)
	}
	if maxGap != "" {
		value, err := strconv.ParseFloat(maxGap, 64)
		if err != nil {
			return patch, fmt.Errorf("--max-gap must be a number")
		}
		patch.MaxGap = tagstore.SetNumber(value)
	}

	for _, field := range clearFields {
		switch strings.ToLower(strings.TrimSpace(field)) {
		case "enabled":
			patch.Enabled = tagstore.Clear()
		case "markers", "markers-enabled":
			patch.MarkersEnabled = tagstore.Clear()
		case "required-duration":
			patch.RequiredSceneTagDuration = tagstore.Clear()
		case "min-marker-duration":
			patch.MinMarkerDuration = tagstore.Clear()
		case "max-gap":
			patch.MaxGap = tagstore.Clear()
		default:
			return patch, fmt.Errorf("unknown field %q in --clear", field)
		}
	}
	return patch, nil
}

// recordHistory audits CLI edits on a best-effort basis; a broken history
// database never blocks the edit itself.
func recordHistory(ctx context.Context, c *commandContext, changes []tagstore.Change) {
	if len(changes) == 0 {
		return
	}
	hist, err := c.openHistory()
	if err != nil || hist == nil {
		return
	}
	defer hist.Close()
	_ = hist.Record(ctx, newOperationID(), changes)
}

func formatDuration(d *tagsheet.Duration) string {
	if d == nil {
		return "-"
	}
	return d.String()
}

func formatFloat(v *float64) string {
	if v == nil {
		return "-"
	}
	return tagsheet.FormatFloat(*v)
}

func orDash(value string) string {
	if value == "" {
		return "-"
	}
	return value
}
