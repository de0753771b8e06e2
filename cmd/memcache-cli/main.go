package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/bincache/memcache"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:11211", "memcached server address")
	flag.Parse()

	fmt.Println("Memcache CLI Tool")
	fmt.Println("================")
	fmt.Println("Commands: get <key>, set <key> <value> [ttl], delete <key>, multi-get <key1> <key2> ..., stats, quit")
	fmt.Println()

	client, err := memcache.New(*addr, memcache.Config{})
	if err != nil {
		fmt.Printf("Failed to connect to %s: %v\n", *addr, err)
		os.Exit(1)
	}
	defer client.Close()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}

		parts := strings.Fields(strings.TrimSpace(scanner.Text()))
		if len(parts) == 0 {
			continue
		}

		ctx := context.Background()

		switch strings.ToLower(parts[0]) {
		case "get":
			if len(parts) != 2 {
				fmt.Println("Usage: get <key>")
				continue
			}
			handleGet(ctx, client, parts[1])

		case "set":
			if len(parts) < 3 || len(parts) > 4 {
				fmt.Println("Usage: set <key> <value> [ttl_seconds]")
				continue
			}
			ttl := time.Duration(0)
			if len(parts) == 4 {
				ttlSecs, err := strconv.Atoi(parts[3])
				if err != nil {
					fmt.Printf("Invalid TTL: %v\n", err)
					continue
				}
				ttl = time.Duration(ttlSecs) * time.Second
			}
			handleSet(ctx, client, parts[1], parts[2], ttl)

		case "delete", "del":
			if len(parts) != 2 {
				fmt.Println("Usage: delete <key>")
				continue
			}
			handleDelete(ctx, client, parts[1])

		case "multi-get", "mget":
			if len(parts) < 2 {
				fmt.Println("Usage: multi-get <key1> <key2> ...")
				continue
			}
			handleMultiGet(ctx, client, parts[1:])

		case "stats":
			fmt.Printf("%+v\n", client.Stats())

		case "quit", "exit":
			return

		default:
			fmt.Printf("Unknown command: %s\n", parts[0])
		}
	}
}

func handleGet(ctx context.Context, client *memcache.Client, key string) {
	item, err := client.Get(ctx, key)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if !item.Found {
		fmt.Println("(not found)")
		return
	}
	fmt.Printf("%q\n", item.Value)
}

func handleSet(ctx context.Context, client *memcache.Client, key, value string, ttl time.Duration) {
	stored, err := client.Set(ctx, key, []byte(value), ttl)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if !stored {
		fmt.Println("(not stored)")
		return
	}
	fmt.Println("OK")
}

func handleDelete(ctx context.Context, client *memcache.Client, key string) {
	deleted, err := client.Delete(ctx, key)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if !deleted {
		fmt.Println("(not found)")
		return
	}
	fmt.Println("OK")
}

func handleMultiGet(ctx context.Context, client *memcache.Client, keys []string) {
	items, err := client.GetMulti(ctx, keys)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	for _, key := range keys {
		item := items[key]
		if item.Found {
			fmt.Printf("%s = %q\n", key, item.Value)
		} else {
			fmt.Printf("%s (not found)\n", key)
		}
	}
}
