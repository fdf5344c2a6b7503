/*
Package linksdk is the client for the invitation link service.

A Client talks to the public endpoints. A Session carries a bearer token
issued by the auth service and talks to the per-member endpoints:

	client := linksdk.NewClient("https://invites.example.com")

	welcome, err := client.Welcome(ctx, code)

	session, err := client.NewSession(accessToken)
	links, err := session.ListLinks(ctx)
	link, err := session.CreateLink(ctx, "Bob")
	err = session.DeleteLink(ctx, link.ID)

LinkStore adapts a Session to lifecycle.LinkStore so a lifecycle.Manager can
run on top of the remote service.

Error responses are returned as *APIError. Use errors.As to inspect the code.
*/
package linksdk
