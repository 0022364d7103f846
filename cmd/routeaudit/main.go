// routeaudit prints the access table, checks it against the navigation catalog
// and optionally evaluates one path for a given session.
//
//	routeaudit
//	routeaudit --path /draft --token t --claim Judge
//
// The exit code is 1 when the catalog and the table disagree.
package main

import (
	"fmt"
	"os"
	"strings"

	"legalai-be/internal/routes"
	"legalai-be/pkg/guard"
	"legalai-be/pkg/navigation"
	"legalai-be/pkg/role"

	"github.com/fatih/color"
	"github.com/spf13/pflag"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		color.Red("error: %v", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var (
		path    string
		method  string
		token   string
		claim   string
		menuFor string
		quiet   bool
	)

	flagSet := pflag.NewFlagSet("routeaudit", pflag.ContinueOnError)
	flagSet.StringVar(&path, "path", "", "evaluate this path instead of only auditing")
	flagSet.StringVar(&method, "method", "", "HTTP method for --path (empty for a page route)")
	flagSet.StringVar(&token, "token", "", "session token; any non-empty value counts as signed in")
	flagSet.StringVar(&claim, "claim", "", "role claim carried by the session")
	flagSet.StringVar(&menuFor, "role", "", "print the menu this role sees")
	flagSet.BoolVarP(&quiet, "quiet", "q", false, "skip printing the table")
	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	table := routes.Table()

	if !quiet {
		printTable(table)
		printCatalog(navigation.Catalog())
	}

	if menuFor != "" {
		r, err := role.Parse(menuFor)
		if err != nil {
			return err
		}
		color.Cyan("\nMenu for %s (landing %s)", r, role.DefaultPath(r))
		for _, item := range navigation.VisibleItems(r) {
			fmt.Printf("  %-20s %s\n", item.Label, item.Path)
		}
	}

	if path != "" {
		decision, err := table.Authorize(strings.ToUpper(method), path, guard.Session{Token: token, RoleClaim: claim})
		if err != nil {
			return err
		}
		line := fmt.Sprintf("\n%s %s -> %s", strings.ToUpper(method), path, decision)
		if target := decision.Target(); target != "" {
			line += " (" + target + ")"
		}
		if decision == guard.Allow {
			color.Green("%s", line)
		} else {
			color.Yellow("%s", line)
		}
	}

	findings := routes.Audit(table, navigation.Catalog())
	if len(findings) == 0 {
		color.Green("\nCatalog and access table agree")
		return nil
	}
	color.Red("\n%d catalog item(s) out of line with the access table:", len(findings))
	for _, f := range findings {
		fmt.Println("  " + f.String())
	}
	return fmt.Errorf("%d finding(s)", len(findings))
}

func printTable(table *guard.Table) {
	color.Cyan("Access table")
	for _, r := range table.Routes() {
		access := "public"
		if r.RequiresAuth {
			access = "signed in"
			if len(r.Roles) > 0 {
				names := make([]string, len(r.Roles))
				for i, rl := range r.Roles {
					names[i] = rl.String()
				}
				access = strings.Join(names, ", ")
			}
		}
		method := r.Method
		if method == "" {
			method = "PAGE"
		}
		fmt.Printf("  %-7s %-28s %s\n", method, r.Path, access)
	}
}

func printCatalog(items []navigation.NavItem) {
	color.Cyan("\nNavigation catalog")
	for _, item := range items {
		names := make([]string, len(item.Roles))
		for i, r := range item.Roles {
			names[i] = r.String()
		}
		fmt.Printf("  %-20s %-20s %s\n", item.Label, item.Path, strings.Join(names, ", "))
	}
}
