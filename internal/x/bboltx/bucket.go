package bboltx

import "go.etcd.io/bbolt"

// Parent is a transaction or bucket that contains nested buckets.
type Parent interface {
	CreateBucketIfNotExists([]byte) (*bbolt.Bucket, error)
	Bucket([]byte) *bbolt.Bucket
}

var (
	_ Parent = (*bbolt.Tx)(nil)
	_ Parent = (*bbolt.Bucket)(nil)
)

// CreateBucketIfNotExists returns the bucket at the given path beneath p,
// creating any bucket along the path that does not already exist.
func CreateBucketIfNotExists(p Parent, path ...[]byte) *bbolt.Bucket {
	return walk(p, path, func(p Parent, name []byte) *bbolt.Bucket {
		b, err := p.CreateBucketIfNotExists(name)
		Must(err)
		return b
	})
}

// Bucket returns the bucket at the given path beneath p, or nil if any bucket
// along the path does not exist.
func Bucket(p Parent, path ...[]byte) *bbolt.Bucket {
	return walk(p, path, Parent.Bucket)
}

// Get returns the value of k within the bucket at the given path beneath p.
//
// It returns nil if the bucket or the key does not exist.
func Get(p Parent, k []byte, path ...[]byte) []byte {
	if b := Bucket(p, path...); b != nil {
		return b.Get(k)
	}

	return nil
}

// Put sets the value of k within b.
func Put(b *bbolt.Bucket, k, v []byte) {
	Must(b.Put(k, v))
}

func walk(
	p Parent,
	path [][]byte,
	next func(Parent, []byte) *bbolt.Bucket,
) *bbolt.Bucket {
	if len(path) == 0 {
		panic("bucket path must not be empty")
	}

	var b *bbolt.Bucket

	for _, name := range path {
		if b = next(p, name); b == nil {
			return nil
		}

		p = b
	}

	return b
}
