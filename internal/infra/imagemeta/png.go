/*
 * @Description: PNG 文件的块级读写，写回时替换 eXIf 块。
 * @Author: 安知鱼
 * @Date: 2025-08-09 10:14:27
 * @LastEditTime: 2025-08-27 18:03:46
 * @LastEditors: 安知鱼
 */
package imagemeta

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
)

var pngSignature = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}

type pngChunk struct {
	typ  string
	data []byte
}

func parsePngChunks(data []byte) ([]pngChunk, error) {
	if !bytes.HasPrefix(data, pngSignature) {
		return nil, fmt.Errorf("不是合法的 PNG 文件")
	}
	r := bytes.NewReader(data[len(pngSignature):])

	var chunks []pngChunk
	for {
		var header [8]byte
		if _, err := io.ReadFull(r, header[:]); err != nil {
			break
		}
		length := binary.BigEndian.Uint32(header[0:4])
		typ := string(header[4:8])
		body := make([]byte, length)
		if _, err := io.ReadFull(r, body); err != nil {
			break
		}
		var crcBuf [4]byte
		io.ReadFull(r, crcBuf[:])

		chunks = append(chunks, pngChunk{typ: typ, data: body})
		if typ == "IEND" {
			break
		}
	}
	return chunks, nil
}

func encodePngChunks(chunks []pngChunk) []byte {
	var buf bytes.Buffer
	buf.Write(pngSignature)
	for _, c := range chunks {
		var lenBuf [4]byte
		binary.BigEndian.PutUint32(lenBuf[:], uint32(len(c.data)))
		buf.Write(lenBuf[:])
		buf.WriteString(c.typ)
		buf.Write(c.data)

		crc := crc32.NewIEEE()
		crc.Write([]byte(c.typ))
		crc.Write(c.data)
		var crcBuf [4]byte
		binary.BigEndian.PutUint32(crcBuf[:], crc.Sum32())
		buf.Write(crcBuf[:])
	}
	return buf.Bytes()
}

// replaceExifChunk 去掉原有的 eXIf 块，并把新的 Exif 块插到首个 IDAT 之前。
// exifBlock 为空表示 Exif 被整体删除。
func replaceExifChunk(chunks []pngChunk, exifBlock []byte) []pngChunk {
	kept := make([]pngChunk, 0, len(chunks)+1)
	for _, c := range chunks {
		if c.typ == "eXIf" {
			continue
		}
		kept = append(kept, c)
	}
	if len(exifBlock) == 0 {
		return kept
	}

	result := make([]pngChunk, 0, len(kept)+1)
	inserted := false
	for _, c := range kept {
		if !inserted && (c.typ == "IDAT" || c.typ == "IEND") {
			result = append(result, pngChunk{typ: "eXIf", data: exifBlock})
			inserted = true
		}
		result = append(result, c)
	}
	if !inserted {
		result = append(result, pngChunk{typ: "eXIf", data: exifBlock})
	}
	return result
}
