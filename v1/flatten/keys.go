package flatten

import "strconv"

// KeySeparator joins field names along the path from the root message.
const KeySeparator = "/"

// JoinKey appends name to prefix. An empty prefix yields name unchanged.
func JoinKey(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + KeySeparator + name
}

// IndexKey appends the "[i]" suffix used for repeated field elements.
func IndexKey(key string, i int) string {
	return key + "[" + strconv.Itoa(i) + "]"
}
