package models

// Upload is a file received from a caller before it reaches object storage.
type Upload struct {
	Name        string
	ContentType string
	Data        []byte
}

// Size returns the payload length in bytes.
func (u Upload) Size() int64 {
	return int64(len(u.Data))
}

// ObjectRef points at a stored object.
type ObjectRef struct {
	Bucket string
	Key    string
	URL    string
}
