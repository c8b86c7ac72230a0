package banner

import "fmt"

const banner = `
 ██████╗██╗  ██╗ █████╗ ████████╗███████╗██╗███╗   ███╗
██╔════╝██║  ██║██╔══██╗╚══██╔══╝██╔════╝██║████╗ ████║
██║     ███████║███████║   ██║   ███████╗██║██╔████╔██║
██║     ██╔══██║██╔══██║   ██║   ╚════██║██║██║╚██╔╝██║
╚██████╗██║  ██║██║  ██║   ██║   ███████║██║██║ ╚═╝ ██║
 ╚═════╝╚═╝  ╚═╝╚═╝  ╚═╝   ╚═╝   ╚══════╝╚═╝╚═╝     ╚═╝
`

// Print writes the startup banner with runtime context.
func Print(dbPath, tablePath, debugAddr, sources, version string) {
	fmt.Print(banner)
	fmt.Println("== Config =====================================================")
	fmt.Printf("DB Path:    %s\n", dbPath)
	fmt.Printf("Responses:  %s\n", tablePath)
	if debugAddr != "" {
		fmt.Printf("Debug:      http://%s (healthz, stats, conversations, metrics)\n", debugAddr)
	}
	if version != "" {
		fmt.Printf("Version:    %s\n", version)
	}
	if sources != "" {
		fmt.Printf("Config sources: %s\n", sources)
	}
	fmt.Println("\n== Console ====================================================")
	fmt.Println("say <text>            - send as operator in the open conversation")
	fmt.Println("as <contact> <text>   - send as a contact")
	fmt.Println("open <n>              - open conversation n (marks seen)")
	fmt.Println("help                  - full command list")
}
