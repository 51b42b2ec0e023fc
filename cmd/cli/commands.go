package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"net/url"
)

var errUsage = errors.New("usage")

// authed returns a client carrying the saved token.
func authed(addr string, insecure bool) (*client, error) {
	tf, err := loadToken()
	if err != nil {
		return nil, err
	}
	return newClient(addr, tf.AccessToken, insecure), nil
}

// need fails with a message when any of the named values is empty.
func need(vals map[string]string) error {
	for name, v := range vals {
		if v == "" {
			return fmt.Errorf("need -%s", name)
		}
	}
	return nil
}

// run executes one subcommand and prints the server response.
func run(ctx context.Context, addr string, insecure bool, cmd string, args []string) error {
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	var (
		email     = fs.String("email", "", "email")
		username  = fs.String("u", "", "username")
		password  = fs.String("p", "", "password")
		name      = fs.String("name", "", "display name")
		bio       = fs.String("bio", "", "bio")
		avatarURL = fs.String("avatar-url", "", "avatar URL")
		avatar    = fs.String("avatar", "", "avatar image file")
		file      = fs.String("file", "", "image file ('-'=stdin)")
		title     = fs.String("title", "", "title")
		desc      = fs.String("desc", "", "description")
		vis       = fs.String("vis", "", "PUBLIC or PRIVATE")
		id        = fs.String("id", "", "id (uuid)")
		photoID   = fs.String("photo", "", "photo id (uuid)")
		albumID   = fs.String("album", "", "album id (uuid)")
		typ       = fs.String("type", "", "PHOTO or ALBUM")
		sort      = fs.String("sort", "", "listing order")
		limit     = fs.Int("limit", 0, "page size")
		cursor    = fs.String("cursor", "", "page cursor")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}

	var out any
	switch cmd {
	case "version":
		fmt.Fprintf(stdout, "psctl %s (%s)\n", version, buildDate)
		return nil

	case "register", "login":
		body := map[string]string{"email": *email, "password": *password}
		path := "/auth/login"
		if cmd == "register" {
			if err := need(map[string]string{"email": *email, "u": *username, "p": *password}); err != nil {
				return err
			}
			body["username"], body["displayName"] = *username, *name
			path = "/auth/register"
		} else if err := need(map[string]string{"email": *email, "p": *password}); err != nil {
			return err
		}
		var resp struct {
			User struct {
				ID string `json:"id"`
			} `json:"user"`
			AccessToken string `json:"accessToken"`
		}
		if err := newClient(addr, "", insecure).doJSON(ctx, http.MethodPost, path, nil, body, &resp); err != nil {
			return err
		}
		if err := saveToken(tokenFile{
			AccessToken: resp.AccessToken,
			ExpiresAt:   tokenExpiry(resp.AccessToken),
			UserID:      resp.User.ID,
		}); err != nil {
			return err
		}
		fmt.Fprintln(stdout, resp.User.ID)
		return nil

	case "profile":
		if err := need(map[string]string{"id": *id}); err != nil {
			return err
		}
		if err := newClient(addr, "", insecure).doJSON(ctx, http.MethodGet, "/users/"+url.PathEscape(*id), nil, nil, &out); err != nil {
			return err
		}

	case "feed":
		q := pageQuery(*limit, *cursor, map[string]string{"sort": *sort})
		if err := newClient(addr, "", insecure).doJSON(ctx, http.MethodGet, "/feed/public", q, nil, &out); err != nil {
			return err
		}

	default:
		c, err := authed(addr, insecure)
		if err != nil {
			return err
		}
		if err := runAuthed(ctx, c, cmd, authedArgs{
			name: *name, bio: *bio, avatarURL: *avatarURL, avatar: *avatar,
			file: *file, title: *title, desc: *desc, vis: *vis,
			id: *id, photoID: *photoID, albumID: *albumID, typ: *typ, sort: *sort,
			limit: *limit, cursor: *cursor,
		}, &out); err != nil {
			return err
		}
	}
	printJSON(out)
	return nil
}

type authedArgs struct {
	name, bio, avatarURL, avatar    string
	file, title, desc, vis          string
	id, photoID, albumID, typ, sort string
	limit                           int
	cursor                          string
}

func runAuthed(ctx context.Context, c *client, cmd string, a authedArgs, out *any) error {
	switch cmd {
	case "me":
		return c.doJSON(ctx, http.MethodGet, "/users/me", nil, nil, out)

	case "update-me":
		if a.avatar != "" {
			return c.upload(ctx, http.MethodPatch, "/users/me", "avatar", a.avatar,
				map[string]string{"displayName": a.name, "bio": a.bio, "avatarUrl": a.avatarURL}, out)
		}
		body := map[string]string{}
		for k, v := range map[string]string{"displayName": a.name, "bio": a.bio, "avatarUrl": a.avatarURL} {
			if v != "" {
				body[k] = v
			}
		}
		return c.doJSON(ctx, http.MethodPatch, "/users/me", nil, body, out)

	case "upload":
		if err := need(map[string]string{"file": a.file}); err != nil {
			return err
		}
		return c.upload(ctx, http.MethodPost, "/photos", "file", a.file,
			map[string]string{"title": a.title, "description": a.desc, "visibility": a.vis}, out)

	case "photos":
		return c.doJSON(ctx, http.MethodGet, "/photos", pageQuery(a.limit, a.cursor, map[string]string{"visibility": a.vis}), nil, out)

	case "photo", "photo-rm":
		if err := need(map[string]string{"id": a.id}); err != nil {
			return err
		}
		method := http.MethodGet
		if cmd == "photo-rm" {
			method = http.MethodDelete
		}
		return c.doJSON(ctx, method, "/photos/"+url.PathEscape(a.id), nil, nil, out)

	case "photo-vis":
		if err := need(map[string]string{"id": a.id, "vis": a.vis}); err != nil {
			return err
		}
		return c.doJSON(ctx, http.MethodPatch, "/photos/"+url.PathEscape(a.id)+"/visibility", nil,
			map[string]string{"visibility": a.vis}, out)

	case "album-new":
		if err := need(map[string]string{"title": a.title}); err != nil {
			return err
		}
		return c.doJSON(ctx, http.MethodPost, "/albums", nil,
			map[string]string{"title": a.title, "description": a.desc, "visibility": a.vis}, out)

	case "albums":
		return c.doJSON(ctx, http.MethodGet, "/albums", pageQuery(a.limit, a.cursor, map[string]string{"visibility": a.vis}), nil, out)

	case "album":
		if err := need(map[string]string{"id": a.id}); err != nil {
			return err
		}
		return c.doJSON(ctx, http.MethodGet, "/albums/"+url.PathEscape(a.id)+"/photos",
			pageQuery(a.limit, a.cursor, map[string]string{"sort": a.sort}), nil, out)

	case "album-rm":
		if err := need(map[string]string{"id": a.id}); err != nil {
			return err
		}
		return c.doJSON(ctx, http.MethodDelete, "/albums/"+url.PathEscape(a.id), nil, nil, out)

	case "album-add", "album-remove":
		if err := need(map[string]string{"photo": a.photoID, "album": a.albumID}); err != nil {
			return err
		}
		path := "/photos/" + url.PathEscape(a.photoID) + "/albums"
		if cmd == "album-add" {
			return c.doJSON(ctx, http.MethodPost, path, nil, map[string]string{"albumId": a.albumID}, out)
		}
		return c.doJSON(ctx, http.MethodDelete, path, url.Values{"album_id": {a.albumID}}, nil, out)

	case "like":
		if err := need(map[string]string{"type": a.typ, "id": a.id}); err != nil {
			return err
		}
		return c.doJSON(ctx, http.MethodPost, "/likes", nil, map[string]string{"targetType": a.typ, "targetId": a.id}, out)

	case "unlike":
		if err := need(map[string]string{"type": a.typ, "id": a.id}); err != nil {
			return err
		}
		return c.doJSON(ctx, http.MethodDelete, "/likes", url.Values{"target_type": {a.typ}, "target_id": {a.id}}, nil, out)

	case "likes":
		return c.doJSON(ctx, http.MethodGet, "/me/likes", pageQuery(a.limit, a.cursor, map[string]string{"type": a.typ}), nil, out)

	default:
		return errUsage
	}
}
