package auth

import "errors"

// ErrInvalidInput is returned when a username or password is empty.
var ErrInvalidInput = errors.New("username and password are required")

// ErrUsernameTaken is returned by Register when the username already belongs to another user.
var ErrUsernameTaken = errors.New("registration failed: username taken")

// ErrInvalidCredentials is returned by Login for both unknown usernames and wrong passwords.
var ErrInvalidCredentials = errors.New("invalid credentials")
