/*
Package authsdk provides a client SDK for the tollgate authentication service.

# Overview

The SDK is organised around two types:

  - SDKClient: unauthenticated operations (health, register, login)
  - Session: operations that carry a bearer token (profile, categories, logout)

Create an SDKClient and log in to obtain a Session:

	client := authsdk.NewSDKClient("http://localhost:3000")

	reg, err := client.Register(ctx, authsdk.RegisterRequest{
		Username: "alice",
		Password: "correct horse battery",
	})
	// reg.Secret and reg.ProvisioningURI are only ever returned here.

	session, err := client.Login(ctx, authsdk.LoginRequest{
		Username: "alice",
		Password: "correct horse battery",
		OTP:      "123456",
	})

	profile, err := session.Profile(ctx)
	categories, err := session.ListCategories(ctx)

A token obtained elsewhere can be wrapped without logging in again:

	session := client.NewSessionFromToken(token)

# Tokens

Depending on how the server is deployed, tokens are either signed JWTs that
expire after ExpiresIn seconds or opaque tokens that live until logout. The
Session does not refresh tokens, an expired token surfaces as an APIError
with code INVALID_TOKEN and the caller has to log in again.

# Error Handling

Every non-2xx response is returned as *APIError carrying the HTTP status and
the server's machine readable code:

	_, err := client.Login(ctx, req)
	if authsdk.IsCode(err, authsdk.CodeOTPRequired) {
		// prompt for the one-time code and retry
	}

# Thread Safety

SDKClient and Session are safe for concurrent use.
*/
package authsdk
