package main

import (
	"fmt"

	echoapi "github.com/lernwerk/backoffice/apps/api/echo"
)

// staffToken mints a signed API token. Staff identity lives in the company
// directory, so there is no user table to check against; possession of the
// server's secret key is what gates this command.
func (cli *commandLine) staffToken(username string, admin bool) error {
	token, err := echoapi.GenerateToken(echoapi.GetStaffClaims(username, admin))
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}
