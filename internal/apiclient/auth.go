// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package apiclient

import (
	"context"
	"net/http"

	"github.com/tidwall/gjson"
)

// AuthAPI groups identity endpoints.
type AuthAPI struct {
	c *Client
}

// LoginResult is what the backend returns for valid credentials.
type LoginResult struct {
	Token string
	Role  string
	Name  string
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges credentials for a bearer token.
func (a *AuthAPI) Login(ctx context.Context, email, password string) (LoginResult, error) {
	const op = "auth.login"
	p, err := a.c.sendJSON(ctx, op, http.MethodPost, "/auth/login", loginRequest{Email: email, Password: password})
	if err != nil {
		return LoginResult{}, err
	}
	if p.Failed() {
		return LoginResult{}, &Error{Kind: KindClient, Op: op, Message: orDefault(p.Message, "Invalid credentials")}
	}

	data := gjson.ParseBytes(p.Data)
	res := LoginResult{
		Token: data.Get("token").String(),
		Role:  data.Get("user.role").String(),
		Name:  data.Get("user.name").String(),
	}
	if res.Token == "" {
		return LoginResult{}, &Error{Kind: KindServer, Op: op, Message: "login response carried no token"}
	}
	return res, nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
