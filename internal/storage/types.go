package storage

import (
	"encoding"

	"github.com/vmihailenco/msgpack/v5"
)

type Storeable interface {
	Key() []byte
	encoding.BinaryMarshaler
	encoding.BinaryUnmarshaler
}

type DBEntry struct {
	ID        string `msgpack:"id"`
	Question  string `msgpack:"question"`
	Answer    string `msgpack:"answer"`
	Format    string `msgpack:"format"`
	Position  int    `msgpack:"position"`
	CreatedAt int64  `msgpack:"createdAt"`
	UpdatedAt int64  `msgpack:"updatedAt"`
}

func (e *DBEntry) Key() []byte {
	return []byte(e.ID)
}

func (e *DBEntry) MarshalBinary() (data []byte, err error) {
	type alias DBEntry
	return msgpack.Marshal((*alias)(e))
}

func (e *DBEntry) UnmarshalBinary(data []byte) error {
	type alias DBEntry
	return msgpack.Unmarshal(data, (*alias)(e))
}

type FileMetadata struct {
	ID        string `msgpack:"id"`
	Hash      string `msgpack:"hash"`
	MimeType  string `msgpack:"mimeType"`
	Size      int64  `msgpack:"size"`
	CreatedAt int64  `msgpack:"createdAt"`
}

func (f *FileMetadata) Key() []byte {
	return []byte(f.ID)
}

func (f *FileMetadata) MarshalBinary() (data []byte, err error) {
	type alias FileMetadata
	return msgpack.Marshal((*alias)(f))
}

func (f *FileMetadata) UnmarshalBinary(data []byte) error {
	type alias FileMetadata
	return msgpack.Unmarshal(data, (*alias)(f))
}
