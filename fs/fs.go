package appfs

import "embed"

// FS holds the database migrations, the email templates and the password blocklist.
//go:embed migrations/*.sql templates/email/* assets/common-passwords.txt
var FS embed.FS
