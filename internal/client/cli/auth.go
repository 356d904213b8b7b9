package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/classroom/internal/client/api"
	"github.com/dmitrijs2005/classroom/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

var errPasswordsDiffer = errors.New("Passwords do not match")

// Signup collects the signup form and, on success, opens the new user's
// dashboard. Students must name the classroom they are joining.
func (a *App) Signup(ctx context.Context) error {
	data, err := a.readSignupForm()
	if err != nil {
		a.notify(err)
		return err
	}

	path, err := a.auth.Signup(ctx, data)
	if err != nil {
		a.notify(err)
		return err
	}

	fmt.Fprintln(a.out, "Account created.")
	return a.Open(ctx, path)
}

func (a *App) readSignupForm() (api.SignupData, error) {
	var data api.SignupData

	roleText, err := getSimpleText(a.reader, "Role (teacher/student):", a.out)
	if err != nil {
		return data, err
	}
	role, err := common.ParseRole(roleText)
	if err != nil {
		return data, err
	}
	data.Role = role.String()

	if data.Name, err = GetRequiredText(a.reader, "Name:", a.out); err != nil {
		return data, err
	}
	if data.Email, err = GetRequiredText(a.reader, "Email:", a.out); err != nil {
		return data, err
	}

	password, err := getPassword(a.out, "Password")
	if err != nil {
		return data, err
	}
	defer common.WipeByteArray(password)

	confirm, err := getPassword(a.out, "Confirm password")
	if err != nil {
		return data, err
	}
	defer common.WipeByteArray(confirm)

	if len(password) == 0 {
		return data, errors.New("Password: value is required")
	}
	if !bytes.Equal(password, confirm) {
		return data, errPasswordsDiffer
	}
	data.Password = string(password)

	if role == common.RoleStudent {
		if data.ClassroomID, err = getSimpleText(a.reader, "Classroom id:", a.out); err != nil {
			return data, err
		}
	}
	return data, nil
}

// Login authenticates as the chosen role and opens its dashboard.
func (a *App) Login(ctx context.Context) error {
	roleText, err := getSimpleText(a.reader, "Role (teacher/student):", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Email:", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out, "Password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	path, err := a.auth.Login(ctx, api.LoginData{Email: email, Password: string(password), Role: roleText})
	if err != nil {
		a.notify(err)
		return err
	}

	fmt.Fprintln(a.out, "Logged in.")
	return a.Open(ctx, path)
}

// Logout ends the session and returns to the home screen.
func (a *App) Logout(ctx context.Context) error {
	path, err := a.auth.Logout(ctx)
	if err != nil {
		a.notify(err)
		return err
	}
	fmt.Fprintln(a.out, "Logged out.")
	return a.Open(ctx, path)
}
