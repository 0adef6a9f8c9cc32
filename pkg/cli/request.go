package cli

import (
	"fmt"
	"os"

	"github.com/civicsignal/regwatch/pkg/request"
	"github.com/civicsignal/regwatch/pkg/states"
	"github.com/urfave/cli/v2"
)

var (
	subjectFlag = &cli.StringFlag{
		Name:     "subject",
		Usage:    "Entity the records concern (e.g. business name and file number)",
		Required: true,
	}

	recordFlag = &cli.StringSliceFlag{
		Name:     "record",
		Usage:    "Record description to request (can be specified multiple times)",
		Required: true,
	}

	requesterFlag = &cli.StringFlag{
		Name:  "requester",
		Usage: "Name for the signature line",
	}

	outFileFlag = &cli.StringFlag{
		Name:  "out",
		Usage: "Write output to a file instead of stdout",
	}

	requestCmd = &cli.Command{
		Name:  "request",
		Usage: "Generate a public-records request letter for a state registry",
		UsageText: `regwatch --state MD request --subject "Alpha Holdings LLC (W1234567)" \
      --record "Articles of organization" --record "Registered agent history"`,
		Action: cmdRequest,
		Flags: []cli.Flag{
			subjectFlag,
			recordFlag,
			requesterFlag,
			outFileFlag,
		},
	}
)

func cmdRequest(c *cli.Context) error {
	cfg := getConfig(c)

	if cfg.State == "" {
		return fmt.Errorf("--%s is required for request", stateFlag.Name)
	}

	p, err := states.Get(cfg.Profiles, cfg.State)
	if err != nil {
		return err
	}

	letter, err := request.Letter(p, request.Request{
		Subject:   c.String(subjectFlag.Name),
		Records:   c.StringSlice(recordFlag.Name),
		Requester: c.String(requesterFlag.Name),
	})
	if err != nil {
		return fmt.Errorf("rendering letter: %w", err)
	}

	return writeOut(c, letter)
}

func writeOut(c *cli.Context, content string) error {
	out := c.String(outFileFlag.Name)
	if out == "" {
		fmt.Println(content)
		return nil
	}
	if err := os.WriteFile(out, []byte(content), 0600); err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}
	return nil
}
