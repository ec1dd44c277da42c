package cli

import (
	"fmt"
	"os"

	"github.com/diillson/rightsizing-tickets/pkg/version"
	"github.com/fatih/color"
)

// displayWelcomeBanner exibe o banner de boas-vindas com informações de versão.
// Vai para stderr para não misturar com a saída dos tickets.
func displayWelcomeBanner(versionStr string) {
	banner := `
     ____  _       _     _       _     _
    |  _ \(_) __ _| |__ | |_ ___(_)___(_)_ __   __ _
    | |_) | |/ _' | '_ \| __/ __| |_  / | '_ \ / _' |
    |  _ <| | (_| | | | | |_\__ \ |/ /| | | | | (_| |
    |_| \_\_|\__, |_| |_|\__|___/_/___|_|_| |_|\__, |
             |___/      T I C K E T S          |___/
    `
	red := color.New(color.FgRed, color.Bold).SprintFunc()
	blue := color.New(color.FgBlue, color.Bold).SprintFunc()

	fmt.Fprintln(os.Stderr, red(banner))

	// Obtem a string formatada da versão através do pacote version
	formattedVersion := version.FormatVersion()
	if versionStr != "" && versionStr != version.Version {
		formattedVersion = versionStr
	}
	fmt.Fprintln(os.Stderr, blue(fmt.Sprintf("Rightsizing Tickets CLI (v%s)", formattedVersion)))
}
