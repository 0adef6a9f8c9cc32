package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/civicsignal/regwatch/pkg/data"
	"github.com/civicsignal/regwatch/pkg/entity"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

const downloadTimeout = 5 * time.Minute

var (
	facilitiesFileFlag = &cli.StringFlag{
		Name:  "facilities",
		Usage: "Path or URL to the daycare facility roster (JSON array)",
	}

	businessesFileFlag = &cli.StringFlag{
		Name:  "businesses",
		Usage: "Path or URL to the business registration extract (JSON array)",
	}

	healthcareFileFlag = &cli.StringFlag{
		Name:  "healthcare",
		Usage: "Path or URL to the healthcare provider roster (JSON array)",
	}

	transportFileFlag = &cli.StringFlag{
		Name:  "transport",
		Usage: "Path or URL to the transport provider roster (JSON array)",
	}

	importCmd = &cli.Command{
		Name:    "import",
		Aliases: []string{"i"},
		Usage:   "Import state datasets (facilities, registrations, provider rosters)",
		UsageText: `regwatch --state MD import --facilities fac.json --businesses biz.json   # import two datasets
   regwatch --state MD import --healthcare hc.json                          # import one roster
   regwatch --state MD import --businesses https://example.gov/biz.json     # import from a URL`,
		Action: cmdImport,
		Flags: []cli.Flag{
			facilitiesFileFlag,
			businessesFileFlag,
			healthcareFileFlag,
			transportFileFlag,
		},
	}
)

type ImportResult struct {
	State      string `json:"state" yaml:"state"`
	Facilities int    `json:"facilities,omitempty" yaml:"facilities,omitempty"`
	Businesses int    `json:"businesses,omitempty" yaml:"businesses,omitempty"`
	Healthcare int    `json:"healthcare,omitempty" yaml:"healthcare,omitempty"`
	Transport  int    `json:"transport,omitempty" yaml:"transport,omitempty"`
	Duration   string `json:"duration" yaml:"duration"`
}

func cmdImport(c *cli.Context) error {
	start := time.Now()
	cfg := getConfig(c)

	if cfg.State == "" {
		return fmt.Errorf("--%s is required for import", stateFlag.Name)
	}

	facPath := c.String(facilitiesFileFlag.Name)
	bizPath := c.String(businessesFileFlag.Name)
	hcPath := c.String(healthcareFileFlag.Name)
	trPath := c.String(transportFileFlag.Name)

	if facPath == "" && bizPath == "" && hcPath == "" && trPath == "" {
		return cli.ShowSubcommandHelp(c)
	}

	// Datasets are parsed concurrently; the single-writer SQLite store is
	// written sequentially afterwards.
	var (
		facilities []*data.FacilityRecord
		businesses []*entity.Business
		healthcare []*entity.Provider
		transport  []*entity.Provider
	)

	g := new(errgroup.Group)
	if facPath != "" {
		g.Go(func() (err error) {
			slog.Info("reading facilities", "state", cfg.State, "source", facPath)
			facilities, err = readDataset[*data.FacilityRecord](facPath)
			return err
		})
	}
	if bizPath != "" {
		g.Go(func() (err error) {
			slog.Info("reading businesses", "state", cfg.State, "source", bizPath)
			businesses, err = readDataset[*entity.Business](bizPath)
			return err
		})
	}
	if hcPath != "" {
		g.Go(func() (err error) {
			slog.Info("reading healthcare providers", "state", cfg.State, "source", hcPath)
			healthcare, err = readDataset[*entity.Provider](hcPath)
			return err
		})
	}
	if trPath != "" {
		g.Go(func() (err error) {
			slog.Info("reading transport providers", "state", cfg.State, "source", trPath)
			transport, err = readDataset[*entity.Provider](trPath)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("reading datasets: %w", err)
	}

	res := &ImportResult{State: cfg.State}

	if facPath != "" {
		if err := data.SaveFacilities(cfg.DB, cfg.State, facilities); err != nil {
			return fmt.Errorf("saving facilities: %w", err)
		}
		res.Facilities = len(facilities)
	}
	if bizPath != "" {
		if err := data.SaveBusinesses(cfg.DB, cfg.State, businesses); err != nil {
			return fmt.Errorf("saving businesses: %w", err)
		}
		res.Businesses = len(businesses)
	}
	if hcPath != "" {
		if err := data.SaveProviders(cfg.DB, cfg.State, entity.ProgramHealthcare, healthcare); err != nil {
			return fmt.Errorf("saving healthcare providers: %w", err)
		}
		res.Healthcare = len(healthcare)
	}
	if trPath != "" {
		if err := data.SaveProviders(cfg.DB, cfg.State, entity.ProgramTransport, transport); err != nil {
			return fmt.Errorf("saving transport providers: %w", err)
		}
		res.Transport = len(transport)
	}

	res.Duration = time.Since(start).String()

	if err := encode(res); err != nil {
		return fmt.Errorf("error encoding result: %w", err)
	}

	return nil
}

// readDataset parses a JSON array of records from a local file or an
// HTTP(S) URL.
func readDataset[T any](path string) ([]T, error) {
	r, err := openDataset(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var records []T
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return records, nil
}

func openDataset(path string) (io.ReadCloser, error) {
	if !strings.HasPrefix(path, "http://") && !strings.HasPrefix(path, "https://") {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", path, err)
		}
		return f, nil
	}

	req, err := http.NewRequest(http.MethodGet, path, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", path, err)
	}

	// Some registry bulk-data endpoints require an API token.
	if token, tokenErr := getRegistryToken(); tokenErr == nil && token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: downloadTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("downloading %s: %w", path, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("downloading %s: unexpected status %s", path, resp.Status)
	}
	return resp.Body, nil
}
