package model

import "encoding/json"

// ID はリクエストボディ中のDiscord系識別子（スノーフレーク）を表す。
// クライアントによってはIDをJSON数値で送ってくるため、文字列と数値の
// どちらでも受け取り文字列に正規化する。数値はjson.Number経由で読み取り、
// float64を介さないため桁落ちしない。
type ID string

// UnmarshalJSON はJSON文字列またはJSON数値をIDとして受け取る。
func (id *ID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*id = ID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

// String はIDの文字列表現を返す。
func (id ID) String() string {
	return string(id)
}
