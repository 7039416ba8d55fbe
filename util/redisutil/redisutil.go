// Copyright 2021-2024, Offchain Labs, Inc.
// For license information, see https://github.com/offchainlabs/mintengine/blob/master/LICENSE

package redisutil

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"
)

// RedisClientFromURL creates a client for a `redis://` or `redis+sentinel://` URL. An empty URL yields
// a nil client.
//
//	redis+sentinel://<user>:<password>@<host1>:<port1>,<host2>:<port2>/<master_name>/<db_number>
func RedisClientFromURL(redisUrl string) (redis.UniversalClient, error) {
	if redisUrl == "" {
		return nil, nil
	}
	if strings.HasPrefix(redisUrl, sentinelScheme+"://") {
		options, err := parseFailoverURL(redisUrl)
		if err != nil {
			return nil, err
		}
		return redis.NewFailoverClient(options), nil
	}
	options, err := redis.ParseURL(redisUrl)
	if err != nil {
		return nil, err
	}
	return redis.NewClient(options), nil
}

const sentinelScheme = "redis+sentinel"

// parseFailoverURL splits the sentinel list out of the authority by hand, since url.Parse accepts only one
// host:port per URL.
func parseFailoverURL(redisUrl string) (*redis.FailoverOptions, error) {
	rest := strings.TrimPrefix(redisUrl, sentinelScheme+"://")
	authority, path := rest, ""
	if slash := strings.Index(rest, "/"); slash >= 0 {
		authority, path = rest[:slash], rest[slash:]
	}
	userinfo, hosts := "", authority
	if at := strings.LastIndex(authority, "@"); at >= 0 {
		userinfo, hosts = authority[:at+1], authority[at+1:]
	}
	u, err := url.Parse(sentinelScheme + "://" + userinfo + "sentinels" + path)
	if err != nil {
		return nil, err
	}
	options := &redis.FailoverOptions{}
	if u.User != nil {
		options.SentinelUsername = u.User.Username()
		options.SentinelPassword, _ = u.User.Password()
	}
	for _, hostPort := range strings.Split(hosts, ",") {
		host, port, err := net.SplitHostPort(hostPort)
		if err != nil {
			host, port = hostPort, ""
		}
		if host == "" {
			host = "localhost"
		}
		if port == "" {
			port = "26379"
		}
		options.SentinelAddrs = append(options.SentinelAddrs, net.JoinHostPort(host, port))
	}
	segments := strings.FieldsFunc(u.Path, func(r rune) bool { return r == '/' })
	switch len(segments) {
	case 1:
		options.MasterName = segments[0]
	case 2:
		options.MasterName = segments[0]
		db, err := strconv.Atoi(segments[1])
		if err != nil {
			return nil, fmt.Errorf("redis: invalid database number: %q", segments[1])
		}
		options.DB = db
	case 0:
		return nil, fmt.Errorf("redis: master name is required")
	default:
		return nil, fmt.Errorf("redis: invalid URL path: %s", u.Path)
	}
	return options, nil
}
