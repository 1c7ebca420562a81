package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"ramana-bouquets/internal/domain"
	"ramana-bouquets/internal/service/cart"
)

// promptResolver asks on the terminal. The shell is blocked waiting for the
// sync while this runs, so it owns the input reader.
type promptResolver struct {
	in  *bufio.Reader
	out io.Writer
}

func (p *promptResolver) ResolveConflict(ctx context.Context, local, remote []domain.CartLine) cart.Strategy {
	fmt.Fprintln(p.out, "Your saved cart differs from the cart on this device.")
	fmt.Fprintln(p.out, "  on this device:")
	printLines(p.out, local)
	fmt.Fprintln(p.out, "  saved in your account:")
	printLines(p.out, remote)

	for {
		fmt.Fprint(p.out, "Keep [m]erged, [l]ocal or [r]emote cart? (default merge): ")
		answer, err := p.in.ReadString('\n')
		if err != nil && answer == "" {
			return cart.StrategyMerge
		}
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "", "m", "merge":
			return cart.StrategyMerge
		case "l", "local":
			return cart.StrategyLocal
		case "r", "remote":
			return cart.StrategyRemote
		}
		if ctx.Err() != nil {
			return cart.StrategyMerge
		}
	}
}

func printLines(out io.Writer, lines []domain.CartLine) {
	if len(lines) == 0 {
		fmt.Fprintln(out, "    (empty)")
		return
	}
	for _, l := range lines {
		fmt.Fprintf(out, "    %-8s %-28s %3d x %s\n", l.ID, l.Title, l.Quantity, l.Price.StringFixed(2))
	}
}
