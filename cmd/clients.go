package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rananjaysingh20/work-tracker-cli/internal/api"
	"github.com/rananjaysingh20/work-tracker-cli/internal/model"
	"github.com/rananjaysingh20/work-tracker-cli/internal/query"
	"github.com/rananjaysingh20/work-tracker-cli/internal/ui"
)

var (
	clientCreateName    string
	clientCreateCompany string
	clientCreateEmail   string
	clientCreatePhone   string
	clientCreateAddress string
	clientCreateNotes   string

	clientUpdateName    string
	clientUpdateCompany string
	clientUpdateEmail   string
	clientUpdateNotes   string
)

var clientsCmd = &cobra.Command{
	Use:   "clients",
	Short: "Manage business clients",
}

var clientsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List clients",
	Args:  cobra.NoArgs,
	RunE:  runClientsList,
}

var clientsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one client",
	Args:  cobra.ExactArgs(1),
	RunE:  runClientsShow,
}

var clientsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a client",
	Args:  cobra.NoArgs,
	RunE:  runClientsCreate,
}

var clientsUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a client (only supplied fields change)",
	Args:  cobra.ExactArgs(1),
	RunE:  runClientsUpdate,
}

var clientsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a client",
	Args:  cobra.ExactArgs(1),
	RunE:  runClientsDelete,
}

var clientsFilesCmd = &cobra.Command{
	Use:   "files",
	Short: "Manage a client's file attachments",
}

var clientsFilesListCmd = &cobra.Command{
	Use:   "list <clientID>",
	Short: "List attached files",
	Args:  cobra.ExactArgs(1),
	RunE:  runClientsFilesList,
}

var clientsFilesUploadCmd = &cobra.Command{
	Use:   "upload <clientID> <path>",
	Short: "Upload a file attachment",
	Args:  cobra.ExactArgs(2),
	RunE:  runClientsFilesUpload,
}

var clientsFilesDeleteCmd = &cobra.Command{
	Use:   "delete <clientID> <fileID>",
	Short: "Delete a file attachment",
	Args:  cobra.ExactArgs(2),
	RunE:  runClientsFilesDelete,
}

func init() {
	clientsCreateCmd.Flags().StringVar(&clientCreateName, "name", "", "Client name")
	clientsCreateCmd.Flags().StringVar(&clientCreateCompany, "company", "", "Company")
	clientsCreateCmd.Flags().StringVar(&clientCreateEmail, "email", "", "Contact email")
	clientsCreateCmd.Flags().StringVar(&clientCreatePhone, "phone", "", "Contact phone")
	clientsCreateCmd.Flags().StringVar(&clientCreateAddress, "address", "", "Address")
	clientsCreateCmd.Flags().StringVar(&clientCreateNotes, "notes", "", "Notes")

	clientsUpdateCmd.Flags().StringVar(&clientUpdateName, "name", "", "New name")
	clientsUpdateCmd.Flags().StringVar(&clientUpdateCompany, "company", "", "New company")
	clientsUpdateCmd.Flags().StringVar(&clientUpdateEmail, "email", "", "New contact email")
	clientsUpdateCmd.Flags().StringVar(&clientUpdateNotes, "notes", "", "New notes")

	clientsFilesCmd.AddCommand(clientsFilesListCmd)
	clientsFilesCmd.AddCommand(clientsFilesUploadCmd)
	clientsFilesCmd.AddCommand(clientsFilesDeleteCmd)

	clientsCmd.AddCommand(clientsListCmd)
	clientsCmd.AddCommand(clientsShowCmd)
	clientsCmd.AddCommand(clientsCreateCmd)
	clientsCmd.AddCommand(clientsUpdateCmd)
	clientsCmd.AddCommand(clientsDeleteCmd)
	clientsCmd.AddCommand(clientsFilesCmd)
}

func runClientsList(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	ctx := context.Background()
	if _, err := a.requireSession(ctx); err != nil {
		return err
	}

	clients, err := query.Fetch(ctx, a.cache, query.Key{Resource: "clients"}, a.client.Clients.List)
	if err != nil {
		fail(err)
	}
	if len(clients) == 0 {
		fmt.Println(ui.Muted("No clients yet."))
		return nil
	}

	rows := make([][]string, 0, len(clients))
	for _, c := range clients {
		rows = append(rows, []string{c.ID, c.Name, c.Company, c.Email})
	}
	fmt.Print(ui.Table([]string{"ID", "NAME", "COMPANY", "EMAIL"}, rows))
	return nil
}

func runClientsShow(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	ctx := context.Background()
	if _, err := a.requireSession(ctx); err != nil {
		return err
	}

	c, err := a.client.Clients.Get(ctx, args[0])
	if err != nil {
		if api.IsNotFound(err) {
			fmt.Println(ui.Muted("Client not found."))
			return nil
		}
		fail(err)
	}
	fmt.Printf("%s\n", ui.Accent(c.Name))
	if c.Company != "" {
		fmt.Printf("  company: %s\n", c.Company)
	}
	if c.Email != "" {
		fmt.Printf("  email:   %s\n", c.Email)
	}
	if c.Phone != "" {
		fmt.Printf("  phone:   %s\n", c.Phone)
	}
	if c.Address != "" {
		fmt.Printf("  address: %s\n", c.Address)
	}
	if c.Notes != "" {
		fmt.Printf("  notes:   %s\n", c.Notes)
	}
	return nil
}

func runClientsCreate(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	ctx := context.Background()
	if _, err := a.requireSession(ctx); err != nil {
		return err
	}

	req := model.CreateClientRequest{
		Name:    clientCreateName,
		Company: clientCreateCompany,
		Email:   clientCreateEmail,
		Phone:   clientCreatePhone,
		Address: clientCreateAddress,
		Notes:   clientCreateNotes,
	}

	m := query.NewMutation[*model.Client](a.cache, query.Invalidates("clients"))
	c, err := m.Run(ctx, func(ctx context.Context) (*model.Client, error) {
		return a.client.Clients.Create(ctx, req)
	})
	if err != nil {
		fail(err)
	}
	fmt.Printf("Created client %s (%s)\n", c.Name, c.ID)
	return nil
}

func runClientsUpdate(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	ctx := context.Background()
	if _, err := a.requireSession(ctx); err != nil {
		return err
	}

	req := model.UpdateClientRequest{}
	if cmd.Flags().Changed("name") {
		req.Name = &clientUpdateName
	}
	if cmd.Flags().Changed("company") {
		req.Company = &clientUpdateCompany
	}
	if cmd.Flags().Changed("email") {
		req.Email = &clientUpdateEmail
	}
	if cmd.Flags().Changed("notes") {
		req.Notes = &clientUpdateNotes
	}

	m := query.NewMutation[*model.Client](a.cache, query.Invalidates("clients"))
	c, err := m.Run(ctx, func(ctx context.Context) (*model.Client, error) {
		return a.client.Clients.Update(ctx, args[0], req)
	})
	if err != nil {
		fail(err)
	}
	fmt.Printf("Updated client %s\n", c.ID)
	return nil
}

func runClientsDelete(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	ctx := context.Background()
	if _, err := a.requireSession(ctx); err != nil {
		return err
	}

	m := query.NewMutation[struct{}](a.cache, query.Invalidates("clients"))
	_, err = m.Run(ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, a.client.Clients.Delete(ctx, args[0])
	})
	if err != nil {
		if api.IsConflict(err) {
			fmt.Println(ui.Alert(api.Detail(err, "Delete blocked by existing data")))
			return fmt.Errorf("client not deleted")
		}
		fail(err)
	}
	fmt.Println("Client deleted.")
	return nil
}

func runClientsFilesList(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	ctx := context.Background()
	if _, err := a.requireSession(ctx); err != nil {
		return err
	}

	clientID := args[0]
	files, ok, err := query.FetchDependent(ctx, a.cache, "clientFiles", clientID,
		func(ctx context.Context) ([]model.FileAttachment, error) {
			return a.client.Clients.Files(ctx, clientID)
		})
	if err != nil {
		fail(err)
	}
	if !ok || len(files) == 0 {
		fmt.Println(ui.Muted("No files attached."))
		return nil
	}

	rows := make([][]string, 0, len(files))
	for _, f := range files {
		rows = append(rows, []string{f.ID, f.FileName, f.FileURL})
	}
	fmt.Print(ui.Table([]string{"ID", "NAME", "URL"}, rows))
	return nil
}

func runClientsFilesUpload(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	ctx := context.Background()
	if _, err := a.requireSession(ctx); err != nil {
		return err
	}

	clientID, path := args[0], args[1]
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	m := query.NewMutation[*model.FileAttachment](a.cache, query.Invalidates("clientFiles", clientID))
	att, err := m.Run(ctx, func(ctx context.Context) (*model.FileAttachment, error) {
		return a.client.Clients.UploadFile(ctx, clientID, filepath.Base(path), f)
	})
	if err != nil {
		fail(err)
	}
	fmt.Printf("Uploaded %s (%s)\n", att.FileName, att.ID)
	return nil
}

func runClientsFilesDelete(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	ctx := context.Background()
	if _, err := a.requireSession(ctx); err != nil {
		return err
	}

	clientID, fileID := args[0], args[1]
	m := query.NewMutation[struct{}](a.cache, query.Invalidates("clientFiles", clientID))
	_, err = m.Run(ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, a.client.Clients.DeleteFile(ctx, clientID, fileID)
	})
	if err != nil {
		fail(err)
	}
	fmt.Println("File deleted.")
	return nil
}
