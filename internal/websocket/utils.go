// internal/websocket/utils.go
package websocket

import "encoding/json"

// decodeData re-decodes a message's generic Data field into target.
func decodeData(data interface{}, target interface{}) error {
	if data == nil {
		return json.Unmarshal([]byte("{}"), target)
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, target)
}
