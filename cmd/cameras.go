package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"camdetect-ui/internal/form"
	"camdetect-ui/internal/models"
	"camdetect-ui/internal/shell"
)

func newCamerasCmd(a *app) *cobra.Command {
	camerasCmd := &cobra.Command{
		Use:   "cameras",
		Short: "Manage cameras",
		Long:  `List, add and delete cameras, or change the backend-wide detection classes.`,
	}

	camerasCmd.AddCommand(
		newCamerasListCmd(a),
		newCamerasAddCmd(a),
		newCamerasDeleteCmd(a),
		newCamerasClassesCmd(a),
	)
	return camerasCmd
}

func newCamerasListCmd(a *app) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all cameras",
		RunE: func(cmd *cobra.Command, _ []string) error {
			api, err := a.registryClient()
			if err != nil {
				return err
			}

			cameras, err := api.List(cmd.Context())
			if err != nil {
				return fmt.Errorf("fetching cameras: %w", err)
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(cameras)
			}

			w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tLOCATION\tPROTOCOL\tCLASSES\tSTREAM")
			fmt.Fprintln(w, "--\t----\t--------\t--------\t-------\t------")
			for _, cam := range cameras {
				stream, err := api.ResolveStreamURL(cam.StreamURL)
				if err != nil {
					stream = "-"
				}
				location := cam.Location
				if location == "" {
					location = "-"
				}
				classes := cam.DetectClasses
				if classes == "" {
					classes = "(unset)"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					cam.ID,
					cam.Name,
					location,
					cam.Protocol,
					classes,
					stream,
				)
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output results as JSON")
	return cmd
}

func newCamerasAddCmd(a *app) *cobra.Command {
	draft := models.DefaultDraft()
	var protocol, classes string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register a camera with the backend",
		Example: `  camdetect-ui cameras add --name "Door Cam" --location Lobby --protocol rtsp --source rtsp://cam1 --classes all
  camdetect-ui cameras add --name Webcam --protocol usb --source 0`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			api, err := a.registryClient()
			if err != nil {
				return err
			}

			ctrl := form.NewController()
			values := map[form.Field]string{
				form.FieldName:          draft.Name,
				form.FieldLocation:      draft.Location,
				form.FieldProtocol:      protocol,
				form.FieldSource:        draft.Source,
				form.FieldDetectClasses: classes,
			}
			for _, field := range form.Fields() {
				if err := ctrl.Set(field, values[field]); err != nil {
					return err
				}
			}

			cam, err := ctrl.Submit(cmd.Context(), api)
			if err != nil {
				var ve *form.ValidationError
				if errors.As(err, &ve) {
					return fmt.Errorf("%w (use --name and --source)", err)
				}
				return fmt.Errorf("failed to add camera: %w", err)
			}

			stream, _ := api.ResolveStreamURL(cam.StreamURL)
			fmt.Fprintf(cmd.OutOrStdout(), "Camera added: %s (%s)\n", cam.Name, cam.ID)
			if stream != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Stream: %s\n", stream)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&draft.Name, "name", "", "camera name (required)")
	cmd.Flags().StringVar(&draft.Location, "location", "", "where the camera is")
	cmd.Flags().StringVar(&protocol, "protocol", string(draft.Protocol), "usb, rtsp, rtmp, http or hls")
	cmd.Flags().StringVar(&draft.Source, "source", "", "stream URL or device, e.g. rtsp://..., /dev/video0 or 0 (required)")
	cmd.Flags().StringVar(&classes, "classes", string(draft.DetectClasses), "person, car or all")
	return cmd
}

func newCamerasDeleteCmd(a *app) *cobra.Command {
	var cameraID string
	var yes bool

	cmd := &cobra.Command{
		Use:     "delete",
		Short:   "Delete a camera",
		Example: `  camdetect-ui cameras delete --id 3f9a1c2b`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			api, err := a.registryClient()
			if err != nil {
				return err
			}

			sh := shell.New(api)
			if err := sh.Present(cmd.Context()); err != nil {
				return fmt.Errorf("fetching cameras: %w", err)
			}

			var confirmer shell.Confirmer = promptConfirmer{in: cmd.InOrStdin(), out: cmd.OutOrStdout()}
			if yes {
				confirmer = shell.ConfirmFunc(func(context.Context, models.Camera) (bool, error) {
					return true, nil
				})
			}

			var cam models.Camera
			confirmed := false
			err = sh.Delete(cmd.Context(), cameraID, shell.ConfirmFunc(func(ctx context.Context, c models.Camera) (bool, error) {
				cam = c
				ok, err := confirmer.Confirm(ctx, c)
				confirmed = ok
				return ok, err
			}))
			if err != nil {
				return err
			}
			if !confirmed {
				fmt.Fprintln(cmd.OutOrStdout(), "Cancelled")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Camera deleted: %s (%s)\n", cam.Name, cameraID)
			return nil
		},
	}

	cmd.Flags().StringVar(&cameraID, "id", "", "camera id")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func newCamerasClassesCmd(a *app) *cobra.Command {
	var set string

	cmd := &cobra.Command{
		Use:   "classes",
		Short: "Show or set the backend-wide detection classes",
		Example: `  camdetect-ui cameras classes
  camdetect-ui cameras classes --set all`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			api, err := a.registryClient()
			if err != nil {
				return err
			}

			var classes string
			if set != "" {
				classes, err = api.SetGlobalClasses(cmd.Context(), models.ClassPreset(set))
			} else {
				classes, err = api.GlobalClasses(cmd.Context())
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Detection classes: %s\n", classes)
			return nil
		},
	}

	cmd.Flags().StringVar(&set, "set", "", "person, car or all")
	return cmd
}

// promptConfirmer asks on the terminal; anything but y or yes declines
type promptConfirmer struct {
	in  io.Reader
	out io.Writer
}

func (p promptConfirmer) Confirm(_ context.Context, cam models.Camera) (bool, error) {
	fmt.Fprintf(p.out, "Delete camera %q (%s)? [y/N]: ", cam.Name, cam.ID)

	answer, err := bufio.NewReader(p.in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}

	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
