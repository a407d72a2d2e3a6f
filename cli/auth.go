package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/mpetrov/famulus/config"
	"github.com/mpetrov/famulus/gmail"
)

// Auth runs the one-time Gmail OAuth exchange: print the consent URL,
// read the pasted authorization code, cache the token.
func Auth(ctx context.Context) error {
	credentials := config.GmailCredentials()

	url, err := gmail.AuthURL(credentials)
	if err != nil {
		return err
	}

	fmt.Printf("Visit this URL to authorize Gmail access:\n\n  %s\n\n", url)
	fmt.Print("Paste the authorization code: ")

	scanner := bufio.NewScanner(os.Stdin)
	if !scanner.Scan() {
		return fmt.Errorf("no authorization code provided")
	}
	code := strings.TrimSpace(scanner.Text())
	if code == "" {
		return fmt.Errorf("no authorization code provided")
	}

	if err := gmail.Exchange(ctx, credentials, code); err != nil {
		return err
	}

	fmt.Println("Gmail token cached. Mailbox tools are now available.")
	return nil
}
