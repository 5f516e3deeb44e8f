package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ckan-publisher/internal/ckan"
	"github.com/ckan-publisher/internal/common/db"
	"github.com/ckan-publisher/internal/common/discord"
	"github.com/ckan-publisher/internal/csvw"
	"github.com/ckan-publisher/internal/publish"
)

func newResolveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "resolve <resource-id>",
		Short:   "Print the id of the dataset that owns a resource",
		Args:    cobra.ExactArgs(1),
		PreRunE: a.requireCKAN,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := a.client.ResolveDatasetIDForResource(cmd.Context(), a.cfg.CKAN.APIKey, args[0])
			if err != nil {
				return err
			}
			return a.print(id, map[string]string{"resource_id": args[0], "dataset_id": id})
		},
	}
}

func newDatasetURLCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "dataset-url <dataset-id>",
		Short:   "Print the public page of a dataset",
		Args:    cobra.ExactArgs(1),
		PreRunE: a.requireCKAN,
		RunE: func(cmd *cobra.Command, args []string) error {
			url, err := a.client.DatasetURL(cmd.Context(), a.cfg.CKAN.APIKey, args[0])
			if err != nil {
				return err
			}
			return a.print(url, map[string]string{"dataset_id": args[0], "url": url})
		},
	}
}

func newDatasetAttrCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "dataset-attr <dataset-id> <attribute>",
		Short:   "Print one field of a dataset",
		Args:    cobra.ExactArgs(2),
		PreRunE: a.requireCKAN,
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := a.client.FetchDatasetAttribute(cmd.Context(), a.cfg.CKAN.APIKey, args[0], args[1])
			if err != nil {
				return err
			}
			return a.print(fmt.Sprint(value), map[string]interface{}{args[1]: value})
		},
	}
}

func newShowResourceCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "show-resource <resource-id>",
		Short:   "Print the metadata of a resource",
		Args:    cobra.ExactArgs(1),
		PreRunE: a.requireCKAN,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.client.ShowResource(cmd.Context(), a.cfg.CKAN.APIKey, args[0])
			if err != nil {
				return err
			}
			text := fmt.Sprintf("%s\t%s\t%s\t%s\tlast modified %s", res.ResourceID, res.PackageID, res.Format, res.URL, res.LastModified)
			return a.print(text, res)
		},
	}
}

func newUpdateDatasetCmd(a *app) *cobra.Command {
	var title, description string

	cmd := &cobra.Command{
		Use:     "update-dataset <resource-id>",
		Short:   "Set the title and description of the dataset owning a resource",
		Args:    cobra.ExactArgs(1),
		PreRunE: a.requireCKAN,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.client.UpdateDataset(cmd.Context(), a.cfg.CKAN.APIKey, args[0], title, description); err != nil {
				return err
			}
			return a.print("dataset updated", map[string]interface{}{"resource_id": args[0], "updated": true})
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Dataset title")
	cmd.Flags().StringVar(&description, "description", "", "Dataset description (notes)")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("description")
	return cmd
}

func newUpdateResourceCmd(a *app) *cobra.Command {
	var p ckan.ResourceParams

	cmd := &cobra.Command{
		Use:     "update-resource <resource-id>",
		Short:   "Replace the metadata of a CSV resource",
		Args:    cobra.ExactArgs(1),
		PreRunE: a.requireCKAN,
		RunE: func(cmd *cobra.Command, args []string) error {
			p.ResourceID = args[0]
			if err := a.client.UpdateResource(cmd.Context(), a.cfg.CKAN.APIKey, p); err != nil {
				return err
			}
			return a.print("resource updated", map[string]interface{}{"resource_id": p.ResourceID, "updated": true})
		},
	}

	f := cmd.Flags()
	f.StringVar(&p.URL, "url", "", "Public URL of the CSV file")
	f.StringVar(&p.Title, "title", "", "Resource name")
	f.StringVar(&p.Description, "description", "", "Resource description")
	f.StringVar(&p.LicenseURL, "license-url", "", "License URL")
	f.StringVar(&p.StartDate, "start-date", "", "Start of the covered period (YYYY-MM-DD)")
	f.StringVar(&p.EndDate, "end-date", "", "End of the covered period, defaults to today")
	for _, name := range []string{"url", "title", "license-url", "start-date"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func newWriteCSVWCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "write-csvw <descriptor.yaml>",
		Short: "Write the CSV file and CSVW metadata described by a descriptor",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			d, err := publish.LoadDescriptor(args[0])
			if err != nil {
				return err
			}
			if err := d.Validate(); err != nil {
				return err
			}
			if err := csvw.WriteCSV(d.CSVPath(), d.Rows, d.Headers); err != nil {
				return err
			}
			if err := csvw.WriteSchema(d.SchemaPath(), d.SchemaParams()); err != nil {
				return err
			}
			a.log.Info("CSVW written", "csv", d.CSVPath(), "schema", d.SchemaPath())
			return a.print(d.CSVPath()+"\n"+d.SchemaPath(), map[string]string{"csv": d.CSVPath(), "schema": d.SchemaPath()})
		},
	}
}

func newPublishCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "publish <descriptor.yaml>",
		Short:   "Write a descriptor's files and push its metadata to CKAN",
		Args:    cobra.ExactArgs(1),
		PreRunE: a.requireCKAN,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			d, err := publish.LoadDescriptor(args[0])
			if err != nil {
				return err
			}

			var journal publish.Journal
			if a.cfg.Database.Enabled {
				database, err := db.New(ctx, a.cfg.Database.ConnectionString(), a.log)
				if err != nil {
					return fmt.Errorf("connecting journal database: %w", err)
				}
				defer database.Close()

				j := db.NewJournal(database)
				if err := j.EnsureSchema(ctx); err != nil {
					return err
				}
				journal = j
			}

			var notifier publish.Notifier
			if hook := discord.NewClient(a.cfg.Discord.WebhookURL); hook.Enabled() {
				notifier = hook
			}

			result, err := publish.NewPublisher(a.client, a.cfg.CKAN.APIKey, journal, notifier, a.log).Publish(ctx, d)
			if err != nil {
				return err
			}

			text := fmt.Sprintf("%s\n%s", result.CSVPath, result.SchemaPath)
			if result.DatasetURL != "" {
				text += "\n" + result.DatasetURL
			}
			return a.print(text, result)
		},
	}
}
