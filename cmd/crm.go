package main

import (
	"os"

	"github.com/k-capehart/go-salesforce/v3"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/signalworks/agency-ops/internal/crm"
	sfpkg "github.com/signalworks/agency-ops/pkg/salesforce"
)

var crmCmd = &cobra.Command{
	Use:   "crm",
	Short: "Sync graph facts to the CRM",
}

var crmSyncCmd = &cobra.Command{
	Use:   "sync <entity-id>",
	Short: "Upsert the client's Salesforce Account from the graph",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		sf, err := initSalesforce()
		if err != nil {
			return err
		}

		g, err := e.Store.LoadGraph(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		res, err := crm.NewSyncer(sf).Sync(cmd.Context(), g)
		if err != nil {
			return err
		}
		return printJSON(res)
	},
}

// initSalesforce authenticates against Salesforce with the configured JWT
// bearer credentials.
func initSalesforce() (sfpkg.Client, error) {
	if cfg.Salesforce.ClientID == "" {
		return nil, eris.New("salesforce client ID is required (AGENCY_SALESFORCE_CLIENT_ID)")
	}

	pemData, err := os.ReadFile(cfg.Salesforce.KeyPath)
	if err != nil {
		return nil, eris.Wrap(err, "read salesforce JWT private key")
	}

	sf, err := salesforce.Init(salesforce.Creds{
		Domain:         cfg.Salesforce.LoginURL,
		Username:       cfg.Salesforce.Username,
		ConsumerKey:    cfg.Salesforce.ClientID,
		ConsumerRSAPem: string(pemData),
	})
	if err != nil {
		return nil, eris.Wrap(err, "init salesforce")
	}

	return sfpkg.NewClient(sf), nil
}

func init() {
	crmCmd.AddCommand(crmSyncCmd)
	rootCmd.AddCommand(crmCmd)
}
