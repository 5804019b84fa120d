package connpool

import "fmt"

// keyString renders a connection key for messages and hook events.
func keyString(key any) string {
	return fmt.Sprint(key)
}
