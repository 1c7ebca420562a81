package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"ramana-bouquets/internal/auth"
	"ramana-bouquets/internal/domain"
	"ramana-bouquets/internal/storefront"

	"github.com/shopspring/decimal"
)

const usage = `commands:
  login <user-id> [token]       sign in (a token is issued when JWT_SECRET is set)
  logout                        sign out
  add <id> <price> <title...>   add one to the cart
  inc <id> | dec <id> | rm <id> change a cart line
  clear                         empty the cart
  cart                          show the cart
  fav <id> <price> <title...>   toggle a favorite
  favs                          show favorites
  sync                          run a reconciliation that is still due
  quit`

type shell struct {
	sf       *storefront.Storefront
	issuer   *auth.Issuer
	verifier *auth.Verifier
	out      io.Writer
}

func (s *shell) run(ctx context.Context, in *bufio.Reader) {
	fmt.Fprintln(s.out, usage)
	for {
		fmt.Fprint(s.out, "> ")
		line, err := in.ReadString('\n')
		if strings.TrimSpace(line) != "" {
			if quit := s.exec(ctx, strings.Fields(line)); quit {
				return
			}
		}
		if err != nil {
			return
		}
	}
}

func (s *shell) exec(ctx context.Context, args []string) bool {
	c, favs := s.sf.Cart(), s.sf.Favorites()
	var err error
	switch args[0] {
	case "help":
		fmt.Fprintln(s.out, usage)
	case "quit", "exit":
		return true
	case "login":
		err = s.login(args[1:])
	case "logout":
		s.sf.Session().SignOut()
		s.sf.Wait()
	case "add":
		var line domain.CartLine
		if line, err = parseLine(args[1:]); err == nil {
			err = c.Add(line)
		}
	case "inc", "dec", "rm":
		if len(args) != 2 {
			err = errors.New("expected a product id")
			break
		}
		id := domain.ProductID(args[1])
		switch args[0] {
		case "inc":
			c.Increase(id)
		case "dec":
			c.Decrease(id)
		default:
			c.Remove(id)
		}
	case "clear":
		c.Clear()
	case "cart":
		printLines(s.out, c.Lines())
		fmt.Fprintf(s.out, "    items: %d  total: %s  (%s)\n", c.TotalItems(), c.TotalPrice().StringFixed(2), c.State())
	case "fav":
		var line domain.CartLine
		if line, err = parseLine(args[1:]); err == nil {
			on := favs.Toggle(domain.FavoriteItem{ID: line.ID, Title: line.Title, Price: line.Price})
			fmt.Fprintf(s.out, "    favorite %s: %t\n", line.ID, on)
		}
	case "favs":
		for _, f := range favs.Items() {
			fmt.Fprintf(s.out, "    %-8s %-28s %s  added %s\n", f.ID, f.Title, f.Price.StringFixed(2), f.AddedAt.Format(time.RFC3339))
		}
		fmt.Fprintf(s.out, "    favorites: %d  (%s)\n", favs.TotalFavorites(), favs.State())
	case "sync":
		rep := s.sf.Sync(ctx)
		fmt.Fprintf(s.out, "    cart: %s  favorites: %s\n", rep.Cart.Outcome, rep.Favorites.Outcome)
	default:
		err = fmt.Errorf("unknown command %q, try help", args[0])
	}
	if err != nil {
		fmt.Fprintf(s.out, "error: %v\n", err)
	}
	return false
}

func (s *shell) login(args []string) error {
	if len(args) == 0 {
		return errors.New("usage: login <user-id> [token]")
	}
	userID, token := args[0], ""
	if len(args) > 1 {
		token = args[1]
	}
	if token == "" {
		if s.issuer == nil {
			return errors.New("no token given and JWT_SECRET is not set")
		}
		var err error
		if token, err = s.issuer.Issue(userID, 24*time.Hour); err != nil {
			return err
		}
	}

	session := s.sf.Session()
	if s.verifier != nil {
		subject, err := session.SignInWithToken(s.verifier, token)
		if err != nil {
			return err
		}
		if subject != userID {
			session.SignOut()
			s.sf.Wait()
			return fmt.Errorf("token belongs to %s", subject)
		}
	} else {
		session.SignIn(userID, token)
	}
	// the conflict prompt, if any, reads stdin while we wait here
	s.sf.Wait()
	return nil
}

func parseLine(args []string) (domain.CartLine, error) {
	if len(args) < 3 {
		return domain.CartLine{}, errors.New("expected <id> <price> <title...>")
	}
	price, err := decimal.NewFromString(args[1])
	if err != nil {
		return domain.CartLine{}, fmt.Errorf("invalid price %q", args[1])
	}
	qty := 1
	title := strings.Join(args[2:], " ")
	if n, err := strconv.Atoi(args[len(args)-1]); err == nil && len(args) > 3 {
		qty = n
		title = strings.Join(args[2:len(args)-1], " ")
	}
	return domain.CartLine{ID: domain.ProductID(args[0]), Title: title, Price: price, Quantity: qty}, nil
}
