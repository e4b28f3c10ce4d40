package bloom

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"hash/fnv"
	"math"

	"github.com/redis/go-redis/v9"
)

// RedisBloomFilter is a bloom filter over a single redis bitmap. Contains
// can report false positives but never false negatives, which is what the
// transaction-id pre-filter needs: a miss proves the transaction is new.
type RedisBloomFilter struct {
	client *redis.Client
	key    string
	m      uint64 // size in bits
	k      uint64 // number of hash functions
}

func NewRedisBloomFilter(client *redis.Client, key string, m, k uint64) *RedisBloomFilter {
	return &RedisBloomFilter{
		client: client,
		key:    key,
		m:      m,
		k:      k,
	}
}

func (bf *RedisBloomFilter) Add(ctx context.Context, element string) error {
	hashes := bf.getHashes(element)

	pipe := bf.client.Pipeline()
	for i := uint64(0); i < bf.k; i++ {
		pipe.SetBit(ctx, bf.key, int64(hashes[i]%bf.m), 1)
	}

	_, err := pipe.Exec(ctx)
	return err
}

func (bf *RedisBloomFilter) Contains(ctx context.Context, element string) (bool, error) {
	hashes := bf.getHashes(element)

	pipe := bf.client.Pipeline()
	cmds := make([]*redis.IntCmd, bf.k)
	for i := uint64(0); i < bf.k; i++ {
		cmds[i] = pipe.GetBit(ctx, bf.key, int64(hashes[i]%bf.m))
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}

	for _, cmd := range cmds {
		if cmd.Val() == 0 {
			return false, nil
		}
	}

	return true, nil
}

func (bf *RedisBloomFilter) Clear(ctx context.Context) error {
	return bf.client.Del(ctx, bf.key).Err()
}

// Double hashing: h_i = h1 + i*h2.
func (bf *RedisBloomFilter) getHashes(element string) []uint64 {
	h := fnv.New64a()
	h.Write([]byte(element))
	h1 := h.Sum64()

	sum := sha256.Sum256([]byte(element))
	h2 := binary.BigEndian.Uint64(sum[:8])

	hashes := make([]uint64, bf.k)
	for i := uint64(0); i < bf.k; i++ {
		hashes[i] = h1 + i*h2
	}

	return hashes
}

func GetOptimalParameters(expectedElements uint64, falsePositiveRate float64) (m, k uint64) {
	mFloat := -float64(expectedElements) * math.Log(falsePositiveRate) / (math.Log(2) * math.Log(2))
	m = uint64(math.Ceil(mFloat))

	kFloat := (float64(m) / float64(expectedElements)) * math.Log(2)
	k = uint64(math.Round(kFloat))
	if k == 0 {
		k = 1
	}

	return m, k
}
