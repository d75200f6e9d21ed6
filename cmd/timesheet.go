package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/frahmantamala/timesheet-management/internal"
	"github.com/frahmantamala/timesheet-management/internal/apiclient"
	"github.com/frahmantamala/timesheet-management/internal/export"
	"github.com/frahmantamala/timesheet-management/internal/screen"
	"github.com/frahmantamala/timesheet-management/internal/timesheet"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	timesheetForm timesheet.Form

	exportFormat string
	exportOutput string
)

var timesheetCmd = &cobra.Command{
	Use:     "timesheet",
	Aliases: []string{"timesheets", "ts"},
	Short:   "Manage your own timesheets",
}

var timesheetListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your timesheets, newest first",
	RunE: withApp(func(ctx context.Context, cmd *cobra.Command, a *app, _ []string) error {
		if _, err := a.requireIdentity(internal.RoleEmployee); err != nil {
			return err
		}
		list := screen.NewTimesheetList(a.timesheets, a.logger)
		err := list.Load(ctx)
		list.Render(cmd.OutOrStdout())
		return err
	}),
}

var timesheetSubmitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit a timesheet for a day",
	RunE: withApp(func(ctx context.Context, cmd *cobra.Command, a *app, _ []string) error {
		if _, err := a.requireIdentity(internal.RoleEmployee); err != nil {
			return err
		}
		form := timesheetForm
		if form.Date == "" {
			form.Date = time.Now().Format(time.DateOnly)
		}

		list := screen.NewTimesheetList(a.timesheets, a.logger)
		_, err := list.Submit(ctx, form)
		list.Render(cmd.OutOrStdout())
		return err
	}),
}

var timesheetEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit a pending or rejected timesheet; unset flags keep their value",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
		if _, err := a.requireIdentity(internal.RoleEmployee); err != nil {
			return err
		}
		list := screen.NewTimesheetList(a.timesheets, a.logger)
		current, err := list.Find(ctx, args[0])
		if err != nil {
			list.Render(cmd.OutOrStdout())
			return err
		}

		form := timesheet.FormFrom(current).Apply(changedForm(cmd.Flags()))
		_, err = list.Edit(ctx, args[0], form)
		list.Render(cmd.OutOrStdout())
		return err
	}),
}

var timesheetDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a pending or rejected timesheet",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
		if _, err := a.requireIdentity(internal.RoleEmployee); err != nil {
			return err
		}
		list := screen.NewTimesheetList(a.timesheets, a.logger)
		err := list.Delete(ctx, args[0])
		list.Render(cmd.OutOrStdout())
		return err
	}),
}

var timesheetExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Download your timesheets as csv, xlsx or pdf",
	RunE: withApp(func(ctx context.Context, cmd *cobra.Command, a *app, _ []string) error {
		if _, err := a.requireIdentity(internal.RoleEmployee); err != nil {
			return err
		}
		format, err := export.ParseFormat(exportFormat)
		if err != nil {
			return err
		}

		list := screen.NewTimesheetList(a.timesheets, a.logger)
		var blob *apiclient.Blob
		if format == export.FormatPDF {
			blob, err = list.DownloadPDF(ctx)
		} else {
			blob, err = list.ExportCSV(ctx)
		}
		if err != nil {
			list.Render(cmd.OutOrStdout())
			return err
		}
		return saveExport(cmd, blob)
	}),
}

// changedForm keeps only the fields whose flags were given, so an explicit
// empty value clears the field.
func changedForm(flags *pflag.FlagSet) timesheet.Patch {
	return timesheet.Patch{
		Date:        changedString(flags, "date", timesheetForm.Date),
		PlannedWork: changedString(flags, "planned", timesheetForm.PlannedWork),
		ActualWork:  changedString(flags, "actual", timesheetForm.ActualWork),
		Remarks:     changedString(flags, "remarks", timesheetForm.Remarks),
	}
}

func changedString(flags *pflag.FlagSet, name, value string) *string {
	if !flags.Changed(name) {
		return nil
	}
	return &value
}

// saveExport converts blob to the requested format and writes it to disk.
func saveExport(cmd *cobra.Command, blob *apiclient.Blob) error {
	format, err := export.ParseFormat(exportFormat)
	if err != nil {
		return err
	}
	data, name, err := export.Convert(blob.Data, blob.Filename, format)
	if err != nil {
		return err
	}
	if exportOutput != "" {
		name = exportOutput
	}
	if err := os.WriteFile(name, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (%d bytes)\n", name, len(data))
	return nil
}

func addTimesheetFormFlags(f *pflag.FlagSet) {
	f.StringVar(&timesheetForm.Date, "date", "", "day in YYYY-MM-DD (default today)")
	f.StringVar(&timesheetForm.PlannedWork, "planned", "", "planned work")
	f.StringVar(&timesheetForm.ActualWork, "actual", "", "actual work")
	f.StringVar(&timesheetForm.Remarks, "remarks", "", "remarks")
}

func addExportFlags(f *pflag.FlagSet) {
	f.StringVar(&exportFormat, "format", export.FormatCSV, "csv, xlsx or pdf (pdf for your own timesheets only)")
	f.StringVarP(&exportOutput, "output", "o", "", "output file (default the server's filename)")
}

func init() {
	addTimesheetFormFlags(timesheetSubmitCmd.Flags())
	addTimesheetFormFlags(timesheetEditCmd.Flags())
	addExportFlags(timesheetExportCmd.Flags())

	timesheetCmd.AddCommand(timesheetListCmd, timesheetSubmitCmd, timesheetEditCmd, timesheetDeleteCmd, timesheetExportCmd)
}
