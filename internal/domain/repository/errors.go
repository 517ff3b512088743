package repository

import "errors"

// ErrDuplicateEmail is returned by UserRepository.Create when the email is
// already registered (unique index on lower(email)).
var ErrDuplicateEmail = errors.New("email already registered")
