package main

import "errors"

var (
	ErrUnknownCommand  = errors.New("unknown command")
	ErrMissingArgument = errors.New("missing argument")
	ErrUnknownProvider = errors.New("unknown email provider")
	ErrUnknownChannel  = errors.New("unknown notification channel")
	ErrUnknownStore    = errors.New("unknown rate limit store")
)
